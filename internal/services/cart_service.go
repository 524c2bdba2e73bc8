package services

import (
	"github.com/shopspring/decimal"

	"noiressence/internal/cart"
)

type CartService struct {
	Sessions *SessionStore
	Catalog  *CatalogService
}

func NewCartService(sessions *SessionStore, catalog *CatalogService) *CartService {
	return &CartService{Sessions: sessions, Catalog: catalog}
}

// Add looks the product up in the catalog and merges one unit into the cart.
func (s *CartService) Add(sessionID, productID string) (cart.Line, error) {
	p, err := s.Catalog.Get(productID)
	if err != nil {
		return cart.Line{}, err
	}
	var l cart.Line
	s.Sessions.Get(sessionID).Do(func(c *cart.Store) { l = c.Add(p) })
	return l, nil
}

func (s *CartService) Remove(sessionID, productID string) bool {
	var removed bool
	s.Sessions.Get(sessionID).Do(func(c *cart.Store) { removed = c.Remove(productID) })
	return removed
}

func (s *CartService) SetPanel(sessionID string, open bool) {
	s.Sessions.Get(sessionID).SetPanel(open)
}

type CartView struct {
	Lines     []cart.Line     `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	PanelOpen bool            `json:"panelOpen"`
}

func (s *CartService) View(sessionID string) CartView {
	return s.Sessions.Get(sessionID).CartView()
}
