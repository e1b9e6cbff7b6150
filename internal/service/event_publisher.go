// Package service holds outbound integrations of the auth core, currently
// the RabbitMQ publisher for audit events.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanguardhq/defense-api/internal/queue"
)

// EventPublisher publishes AuthEvents to the durable auth.events queue.
// Each publish opens a short-lived connection; auth events are rare
// enough that holding a broker connection open buys nothing. Errors are
// returned so the caller can log and move on; a broker outage must never
// fail a signup or login.
type EventPublisher struct {
	URL string
}

func NewEventPublisher(url string) *EventPublisher {
	return &EventPublisher{URL: url}
}

// Publish marshals the event and sends it as a persistent message to the
// auth.events queue, declaring the queue first so publishing works before
// any consumer has started.
func (p *EventPublisher) Publish(ctx context.Context, ev queue.AuthEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare("auth.events", true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",            // default exchange
		"auth.events", // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
