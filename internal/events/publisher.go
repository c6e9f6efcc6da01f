// Package events publishes booking lifecycle events to RabbitMQ. Publishing
// is best-effort: a nil publisher or a broker failure never interrupts the
// request flow, callers log and move on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const statusQueueName = "booking.status"

// BookingStatusEvent is emitted whenever a booking reaches a terminal status.
type BookingStatusEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Trigger   string    `json:"trigger"` // "webhook", "poll" or "user_cancel"
	At        time.Time `json:"at"`
}

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewPublisher dials the broker and declares the durable status queue. The
// connection is created once at process start and injected where needed.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		statusQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &Publisher{
		conn: conn,
		ch:   ch,
		log:  log.With(zap.String("publisher", "booking_events")),
	}, nil
}

// PublishStatusChange sends the event to the status queue. Safe on a nil
// publisher (events disabled).
func (p *Publisher) PublishStatusChange(ctx context.Context, event BookingStatusEvent) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",              // default exchange
		statusQueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.Warn("Failed to publish booking status event",
			zap.String("booking_id", event.BookingID),
			zap.String("status", event.Status),
			zap.Error(err),
		)
		return fmt.Errorf("publish status event: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
