// Package checkout turns a session cart into a confirmed order.
//
// A Flow opens in StatusCollecting when the cart has lines and in StatusEmpty
// otherwise. Submit hands the order to a Sink and only clears the cart once the
// sink has acknowledged it; a failed hand-off leaves both the cart and the
// flow untouched so the customer can try again.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"noiressence/internal/cart"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotCollecting      = errors.New("checkout is not collecting shipping details")
	ErrShippingIncomplete = errors.New("shipping details incomplete")
)

type Status int

const (
	StatusEmpty Status = iota
	StatusCollecting
	StatusConfirmed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusCollecting:
		return "collecting"
	case StatusConfirmed:
		return "confirmed"
	}
	return "unknown"
}

type Shipping struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Missing lists the names of blank fields.
func (s Shipping) Missing() []string {
	var out []string
	for _, f := range []struct{ name, v string }{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"address", s.Address},
		{"city", s.City},
		{"postalCode", s.PostalCode},
	} {
		if strings.TrimSpace(f.v) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

type Order struct {
	ID        string          `json:"orderId"`
	SessionID string          `json:"sessionId,omitempty"`
	Lines     []cart.Line     `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  Shipping        `json:"shipping"`
	PlacedAt  time.Time       `json:"placedAt"`
}

func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// Sink receives placed orders. A nil error is the acknowledgment.
// Errors wrapped with backoff.Permanent are not retried.
type Sink interface {
	Accept(ctx context.Context, o Order) error
}

type SinkFunc func(ctx context.Context, o Order) error

func (f SinkFunc) Accept(ctx context.Context, o Order) error { return f(ctx, o) }

// Acknowledge accepts every order in-process.
var Acknowledge Sink = SinkFunc(func(context.Context, Order) error { return nil })

type Option func(*Flow)

// WithRetries bounds how many times a failed hand-off is retried.
func WithRetries(n int) Option { return func(f *Flow) { f.retries = n } }

// WithBackOff replaces the exponential policy between attempts.
func WithBackOff(fn func() backoff.BackOff) Option { return func(f *Flow) { f.newBackOff = fn } }

func WithSession(id string) Option { return func(f *Flow) { f.sessionID = id } }

func WithClock(now func() time.Time) Option { return func(f *Flow) { f.now = now } }

type Flow struct {
	cart      *cart.Store
	sink      Sink
	sessionID string
	retries   int
	now       func() time.Time

	newBackOff func() backoff.BackOff

	status   Status
	lines    []cart.Line
	subtotal decimal.Decimal
	order    *Order
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// Open snapshots the cart. A nil sink means Acknowledge.
func Open(c *cart.Store, sink Sink, opts ...Option) *Flow {
	if sink == nil {
		sink = Acknowledge
	}
	f := &Flow{
		cart:       c,
		sink:       sink,
		retries:    3,
		now:        time.Now,
		newBackOff: defaultBackOff,
		status:     StatusEmpty,
		subtotal:   decimal.Zero,
	}
	for _, o := range opts {
		o(f)
	}
	if !c.Empty() {
		f.status = StatusCollecting
		f.lines = c.Lines()
		f.subtotal = c.Subtotal()
	}
	return f
}

func (f *Flow) Status() Status            { return f.status }
func (f *Flow) Lines() []cart.Line        { return f.lines }
func (f *Flow) Subtotal() decimal.Decimal { return f.subtotal }
func (f *Flow) Total() decimal.Decimal    { return f.subtotal } // shipping is free

// Order returns the confirmed order, if any.
func (f *Flow) Order() (Order, bool) {
	if f.order == nil {
		return Order{}, false
	}
	return *f.order, true
}

// Submit places the order built from the live cart.
func (f *Flow) Submit(ctx context.Context, ship Shipping) (Order, error) {
	if f.status != StatusCollecting {
		return Order{}, ErrNotCollecting
	}
	if f.cart.Empty() {
		return Order{}, ErrEmptyCart
	}
	if missing := ship.Missing(); len(missing) > 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrShippingIncomplete, strings.Join(missing, ", "))
	}

	o := Order{
		ID:        uuid.NewString(),
		SessionID: f.sessionID,
		Lines:     f.cart.Lines(),
		Subtotal:  f.cart.Subtotal(),
		Shipping:  ship,
		PlacedAt:  f.now().UTC(),
	}

	retries := f.retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), uint64(retries)), ctx)
	if err := backoff.Retry(func() error { return f.sink.Accept(ctx, o) }, policy); err != nil {
		return Order{}, fmt.Errorf("submit order %s: %w", o.ID, err)
	}

	f.lines = o.Lines
	f.subtotal = o.Subtotal
	f.order = &o
	f.status = StatusConfirmed
	f.cart.Clear()
	return o, nil
}
