package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noiressence/internal/checkout"
	"noiressence/internal/services"
)

var ship = checkout.Shipping{
	FirstName: "Ada", LastName: "Noir", Email: "ada@example.com",
	Address: "1 Rue Royale", City: "Paris", PostalCode: "75008",
}

type recordingSink struct {
	mu     sync.Mutex
	fail   int
	orders []checkout.Order
}

func (s *recordingSink) Accept(_ context.Context, o checkout.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("broker unavailable")
	}
	s.orders = append(s.orders, o)
	return nil
}

func TestOrderFlow_AddCartCheckout(t *testing.T) {
	cat := newCatalog(t)
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, cat)
	sink := &recordingSink{}
	co := services.NewCheckoutService(sessions, sink, 2)

	_, err := carts.Add("s1", "1")
	require.NoError(t, err)
	_, err = carts.Add("s1", "1")
	require.NoError(t, err)
	_, err = carts.Add("s1", "3")
	require.NoError(t, err)

	v := carts.View("s1")
	require.Equal(t, 3, v.ItemCount)
	require.Equal(t, "535.00", v.Subtotal.StringFixed(2))
	require.True(t, v.PanelOpen)

	opened := co.Open("s1")
	require.Equal(t, checkout.StatusCollecting, opened.Status)
	require.Equal(t, "535.00", opened.Total.StringFixed(2))

	out, err := co.Place(context.Background(), "s1", ship)
	require.NoError(t, err)
	require.Equal(t, checkout.StatusConfirmed, out.Status)
	require.NotNil(t, out.Order)
	require.Equal(t, 3, out.Order.ItemCount())
	require.True(t, out.Total.Equal(out.Order.Subtotal))
	require.Len(t, sink.orders, 1)
	require.Equal(t, "s1", sink.orders[0].SessionID)

	require.Zero(t, carts.View("s1").ItemCount)
	require.Equal(t, checkout.StatusEmpty, co.Open("s1").Status)
}

func TestAddUnknownProduct(t *testing.T) {
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, newCatalog(t))
	_, err := carts.Add("s1", "nope")
	require.ErrorIs(t, err, services.ErrProductMissing)
	require.Zero(t, carts.View("s1").ItemCount)
	require.False(t, carts.View("s1").PanelOpen)
}

func TestSessionsAreIsolated(t *testing.T) {
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, newCatalog(t))
	_, err := carts.Add("a", "2")
	require.NoError(t, err)
	require.Equal(t, 1, carts.View("a").ItemCount)
	require.Zero(t, carts.View("b").ItemCount)

	carts.SetPanel("a", false)
	require.False(t, carts.View("a").PanelOpen)
	require.True(t, carts.Remove("a", "2"))
	require.False(t, carts.Remove("a", "2"))
}

func TestPlaceKeepsCartWhenSinkFails(t *testing.T) {
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, newCatalog(t))
	sink := &recordingSink{fail: 5}
	co := services.NewCheckoutService(sessions, sink, 0)

	_, err := carts.Add("s1", "4")
	require.NoError(t, err)
	out, err := co.Place(context.Background(), "s1", ship)
	require.Error(t, err)
	require.Equal(t, checkout.StatusCollecting, out.Status)
	require.Nil(t, out.Order)
	require.Equal(t, 1, carts.View("s1").ItemCount)
}

func TestPlaceRecoversWithinRetries(t *testing.T) {
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, newCatalog(t))
	sink := &recordingSink{fail: 1}
	co := services.NewCheckoutService(sessions, sink, 2)

	_, err := carts.Add("s1", "4")
	require.NoError(t, err)
	_, err = co.Place(context.Background(), "s1", ship)
	require.NoError(t, err)
	require.Len(t, sink.orders, 1)
	require.Zero(t, carts.View("s1").ItemCount)
}

func TestPlaceEmptyAndIncomplete(t *testing.T) {
	sessions := services.NewSessionStore(16, time.Hour)
	carts := services.NewCartService(sessions, newCatalog(t))
	co := services.NewCheckoutService(sessions, checkout.Acknowledge, 0)

	_, err := co.Place(context.Background(), "s1", ship)
	require.ErrorIs(t, err, checkout.ErrNotCollecting)

	_, err = carts.Add("s1", "5")
	require.NoError(t, err)
	_, err = co.Place(context.Background(), "s1", checkout.Shipping{FirstName: "Ada"})
	require.ErrorIs(t, err, checkout.ErrShippingIncomplete)
	require.Equal(t, 1, carts.View("s1").ItemCount)
}
