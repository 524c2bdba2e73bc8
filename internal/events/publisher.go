package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"noiressence/internal/checkout"
)

var ErrNacked = errors.New("broker rejected message")

// OrderPublisher is a checkout.Sink that reports an order as accepted only
// once the broker confirms it.
type OrderPublisher struct {
	mu      sync.Mutex
	ch      *amqp.Channel
	timeout time.Duration
}

func NewOrderPublisher(conn *amqp.Connection) (*OrderPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &OrderPublisher{ch: ch, timeout: 5 * time.Second}, nil
}

func (p *OrderPublisher) Close() error { return p.ch.Close() }

func (p *OrderPublisher) Accept(ctx context.Context, o checkout.Order) error {
	body, err := json.Marshal(NewOrderPlaced(o))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderPlacedEventType, err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, o.ID, body)
}

func (p *OrderPublisher) publishJSON(ctx context.Context, routingKey, msgID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  orderPlacedContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    msgID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	acked, err := dc.WaitContext(pubCtx)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNacked, msgID)
	}
	return nil
}

var _ checkout.Sink = (*OrderPublisher)(nil)
