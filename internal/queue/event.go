// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  Both are durable and carry persistent JSON messages.
const (
	BookingCreated = "booking.created"
	ProofSubmitted = "payment.proof_submitted"
)

// BookingCreatedEvent is published after the upstream API accepted a booking
// made through the dialog.  It carries enough to audit the booking without
// calling the API again.
type BookingCreatedEvent struct {
	EventID         string `json:"event_id"`
	SessionID       string `json:"session_id"`
	UserEmail       string `json:"user_email"`
	ActivityID      int64  `json:"activity_id"`
	ActivityTitle   string `json:"activity_title,omitempty"`
	TransactionID   string `json:"transaction_id,omitempty"`
	InvoiceID       string `json:"invoice_id,omitempty"`
	PaymentMethodID int64  `json:"payment_method_id"`
	TotalAmount     int64  `json:"total_amount"`
	OccurredAt      string `json:"occurred_at"`
}

// ProofSubmittedEvent is published when a user attaches a proof of payment
// URL to a transaction.
type ProofSubmittedEvent struct {
	EventID       string `json:"event_id"`
	SessionID     string `json:"session_id"`
	UserEmail     string `json:"user_email"`
	TransactionID string `json:"transaction_id"`
	ProofURL      string `json:"proof_payment_url"`
	OccurredAt    string `json:"occurred_at"`
}

// stamp fills the identity and time fields left empty by the caller.
func stamp(id, at *string, now time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *at == "" {
		*at = now.UTC().Format(time.RFC3339)
	}
}
