package events

import (
	"time"

	"github.com/shopspring/decimal"

	"noiressence/internal/checkout"
)

type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type ShipTo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type OrderPlaced struct {
	EventType string          `json:"eventType"`
	OrderID   string          `json:"orderId"`
	SessionID string          `json:"sessionId"`
	Items     []OrderLine     `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ShipTo    ShipTo          `json:"shipTo"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewOrderPlaced(o checkout.Order) OrderPlaced {
	ev := OrderPlaced{
		EventType: OrderPlacedEventType,
		OrderID:   o.ID,
		SessionID: o.SessionID,
		Items:     make([]OrderLine, 0, len(o.Lines)),
		ItemCount: o.ItemCount(),
		Subtotal:  o.Subtotal,
		ShipTo: ShipTo{
			Name:       o.Shipping.FirstName + " " + o.Shipping.LastName,
			Email:      o.Shipping.Email,
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			PostalCode: o.Shipping.PostalCode,
		},
		Timestamp: o.PlacedAt,
	}
	for _, l := range o.Lines {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: l.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		})
	}
	return ev
}
