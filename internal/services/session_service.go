package services

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"noiressence/internal/cart"
)

// Session is everything one browser tab accumulates: its cart, whether the
// cart panel is showing and the Sommelier conversation.
type Session struct {
	ID string

	mu        sync.Mutex
	cart      *cart.Store
	panelOpen bool
	conv      *Conversation
}

func newSession(id string) *Session {
	s := &Session{ID: id, cart: cart.New()}
	s.cart.Subscribe(func(e cart.Event) {
		if e.Kind == cart.Added {
			s.panelOpen = true
		}
	})
	return s
}

// Do runs fn with exclusive access to the session's cart.
func (s *Session) Do(fn func(c *cart.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

func (s *Session) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelOpen
}

func (s *Session) SetPanel(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = open
}

func (s *Session) CartView() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartView{
		Lines:     s.cart.Lines(),
		ItemCount: s.cart.ItemCount(),
		Subtotal:  s.cart.Subtotal(),
		PanelOpen: s.panelOpen,
	}
}

// Conversation returns the session's chat, starting it on first use.
func (s *Session) Conversation() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv == nil {
		s.conv = newConversation()
	}
	return s.conv
}

// SessionStore keeps sessions in memory and forgets idle ones after ttl.
type SessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
}

func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &SessionStore{cache: expirable.NewLRU[string, *Session](capacity, nil, ttl)}
}

// Get returns the session for id, creating it if needed, and refreshes its ttl.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.cache.Get(id)
	if !ok {
		s = newSession(id)
	}
	st.cache.Add(id, s)
	return s
}

func (st *SessionStore) Len() int { return st.cache.Len() }
