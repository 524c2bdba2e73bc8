package services

import (
	"context"

	"github.com/shopspring/decimal"

	"noiressence/internal/cart"
	"noiressence/internal/checkout"
)

type CheckoutService struct {
	Sessions *SessionStore
	Sink     checkout.Sink
	Retries  int
}

func NewCheckoutService(sessions *SessionStore, sink checkout.Sink, retries int) *CheckoutService {
	return &CheckoutService{Sessions: sessions, Sink: sink, Retries: retries}
}

type CheckoutView struct {
	Status   checkout.Status
	Lines    []cart.Line
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Order    *checkout.Order
}

func viewOf(f *checkout.Flow) CheckoutView {
	v := CheckoutView{Status: f.Status(), Lines: f.Lines(), Subtotal: f.Subtotal(), Total: f.Total()}
	if o, ok := f.Order(); ok {
		v.Order = &o
	}
	return v
}

// Open starts a fresh checkout over the session's cart.
func (s *CheckoutService) Open(sessionID string) CheckoutView {
	var v CheckoutView
	s.Sessions.Get(sessionID).Do(func(c *cart.Store) {
		v = viewOf(checkout.Open(c, s.Sink, checkout.WithSession(sessionID)))
	})
	return v
}

// Place opens a checkout and submits it in one step. The cart stays locked
// until the sink answers so a concurrent add cannot slip between order and clear.
func (s *CheckoutService) Place(ctx context.Context, sessionID string, ship checkout.Shipping) (CheckoutView, error) {
	var (
		v   CheckoutView
		err error
	)
	s.Sessions.Get(sessionID).Do(func(c *cart.Store) {
		f := checkout.Open(c, s.Sink, checkout.WithSession(sessionID), checkout.WithRetries(s.Retries))
		_, err = f.Submit(ctx, ship)
		v = viewOf(f)
	})
	return v, err
}
