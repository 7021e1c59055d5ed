package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to RabbitMQ.  Each publish dials its own
// connection; events are rare compared to page views.  Errors are logged and
// returned so callers can ignore them without failing the user action.
type Publisher struct {
	url string
	log echo.Logger
	now func() time.Time
}

func NewPublisher(url string, log echo.Logger) *Publisher {
	return &Publisher{url: url, log: log, now: time.Now}
}

// BookingCreated publishes ev to the booking.created queue.
func (p *Publisher) BookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
	stamp(&ev.EventID, &ev.OccurredAt, p.now())
	return p.publish(ctx, BookingCreated, ev)
}

// ProofSubmitted publishes ev to the payment.proof_submitted queue.
func (p *Publisher) ProofSubmitted(ctx context.Context, ev ProofSubmittedEvent) error {
	stamp(&ev.EventID, &ev.OccurredAt, p.now())
	return p.publish(ctx, ProofSubmitted, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", queue, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Warnf("rabbitmq: declare %s failed: %v", queue, err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warnf("rabbitmq: publish %s failed: %v", queue, err)
		return err
	}
	return nil
}
