package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noiressence/internal/services"
)

func TestSessionStoreReturnsSameSession(t *testing.T) {
	st := services.NewSessionStore(4, time.Hour)
	a := st.Get("a")
	require.Same(t, a, st.Get("a"))
	require.NotSame(t, a, st.Get("b"))
	require.Same(t, a.Conversation(), a.Conversation())
	require.Equal(t, 2, st.Len())
}

func TestSessionStoreForgetsIdleSessions(t *testing.T) {
	st := services.NewSessionStore(4, 20*time.Millisecond)
	a := st.Get("a")
	time.Sleep(60 * time.Millisecond)
	require.NotSame(t, a, st.Get("a"))
}

func TestSessionStoreEvictsOldestOverCapacity(t *testing.T) {
	st := services.NewSessionStore(2, time.Hour)
	a := st.Get("a")
	st.Get("b")
	st.Get("c")
	require.Equal(t, 2, st.Len())
	require.NotSame(t, a, st.Get("a"))
}
