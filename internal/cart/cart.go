// Package cart holds the in-memory cart of a single shopping session.
//
// A Store keeps at most one line per product id, in first-added order, and
// every line has a quantity of at least one. Prices are captured when a line
// is created and never refreshed from the catalog afterwards.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"noiressence/internal/domain"
)

type Line struct {
	domain.Product
	Quantity int `json:"quantity"`
}

// Total is the line's unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type EventKind int

const (
	Added EventKind = iota + 1
	Removed
	Cleared
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

type Event struct {
	Kind      EventKind
	ProductID string
	Quantity  int // quantity of the affected line after the change
}

// Store is not safe for concurrent use; its owner serializes access.
type Store struct {
	lines     []Line
	observers []func(Event)
}

func New() *Store { return &Store{} }

// Subscribe registers fn to run after every successful mutation.
func (s *Store) Subscribe(fn func(Event)) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

func (s *Store) emit(e Event) {
	for _, fn := range s.observers {
		fn(e)
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.ID == id })
}

// Add merges one unit of p into the cart and returns the resulting line.
func (s *Store) Add(p domain.Product) Line {
	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Quantity++
		l := s.lines[i]
		s.emit(Event{Kind: Added, ProductID: l.ID, Quantity: l.Quantity})
		return l
	}
	snap := p
	snap.Notes = slices.Clone(p.Notes)
	l := Line{Product: snap, Quantity: 1}
	s.lines = append(s.lines, l)
	s.emit(Event{Kind: Added, ProductID: l.ID, Quantity: 1})
	return l
}

// Remove drops the line for id and reports whether one existed.
func (s *Store) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.lines = slices.Delete(s.lines, i, i+1)
	s.emit(Event{Kind: Removed, ProductID: id})
	return true
}

func (s *Store) Clear() {
	s.lines = nil
	s.emit(Event{Kind: Cleared})
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		l.Notes = slices.Clone(l.Notes)
		out[i] = l
	}
	return out
}

func (s *Store) Len() int    { return len(s.lines) }
func (s *Store) Empty() bool { return len(s.lines) == 0 }

func (s *Store) ItemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Total())
	}
	return total
}
