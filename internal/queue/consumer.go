package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mabarin/mabarin-web/internal/model"
)

// Sink stores decoded events.
type Sink interface {
	Record(ctx context.Context, e model.AuditEntry) error
}

// Consumer drains both event queues into a Sink.
type Consumer struct {
	url  string
	sink Sink
	log  echo.Logger
}

func NewConsumer(url string, sink Sink, log echo.Logger) *Consumer {
	return &Consumer{url: url, sink: sink, log: log}
}

// Run connects, consumes, and reconnects with exponential backoff (1s up to
// 30s) until ctx is cancelled.  It returns ctx.Err() on shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warnf("audit-consumer: dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warnf("audit-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warnf("audit-consumer: set QoS: %v", err)
	}

	var booked, proofs <-chan amqp.Delivery
	for _, q := range []struct {
		name string
		dst  *<-chan amqp.Delivery
	}{
		{BookingCreated, &booked},
		{ProofSubmitted, &proofs},
	} {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", q.name, err)
		}
		d, err := ch.Consume(q.name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", q.name, err)
		}
		*q.dst = d
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-booked:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, BookingCreated, d)
		case d, ok := <-proofs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, ProofSubmitted, d)
		}
	}
}

// handle acks stored messages and rejects the rest without requeueing, so a
// poison message cannot spin the loop.
func (c *Consumer) handle(ctx context.Context, queue string, d amqp.Delivery) {
	entry, err := Decode(queue, d.Body)
	if err == nil {
		err = c.sink.Record(ctx, entry)
	}
	if err != nil {
		c.log.Errorf("audit-consumer: %s: %v", queue, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// Decode maps a message body from queue onto an audit entry.
func Decode(queue string, body []byte) (model.AuditEntry, error) {
	switch queue {
	case BookingCreated:
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return model.AuditEntry{}, fmt.Errorf("unmarshal: %w", err)
		}
		return model.AuditEntry{
			Event:           queue,
			SessionID:       ev.SessionID,
			UserEmail:       ev.UserEmail,
			ActivityID:      ev.ActivityID,
			TransactionID:   ev.TransactionID,
			PaymentMethodID: ev.PaymentMethodID,
			Detail:          bookingDetail(ev),
			OccurredAt:      parseTime(ev.OccurredAt),
		}, nil
	case ProofSubmitted:
		var ev ProofSubmittedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return model.AuditEntry{}, fmt.Errorf("unmarshal: %w", err)
		}
		return model.AuditEntry{
			Event:         queue,
			SessionID:     ev.SessionID,
			UserEmail:     ev.UserEmail,
			TransactionID: ev.TransactionID,
			Detail:        "proof=" + ev.ProofURL,
			OccurredAt:    parseTime(ev.OccurredAt),
		}, nil
	}
	return model.AuditEntry{}, fmt.Errorf("unknown queue %q", queue)
}

func bookingDetail(ev BookingCreatedEvent) string {
	return fmt.Sprintf("invoice=%s activity=%q total=%s",
		ev.InvoiceID, ev.ActivityTitle, model.FormatIDR(ev.TotalAmount))
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
