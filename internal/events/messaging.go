// Package events publishes storefront domain events to RabbitMQ.
package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange         = "noiressence.events"
	OrderPlacedRoutingKey  = "order.placed.v1"
	OrderPlacedEventType   = "OrderPlaced"
	orderPlacedContentType = "application/json"
)

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
