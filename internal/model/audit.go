package model

import "time"

// AuditEntry is one booking-related event as stored by the audit consumer.
type AuditEntry struct {
	ID              int64     `json:"id"`
	Event           string    `json:"event"`
	SessionID       string    `json:"session_id"`
	UserEmail       string    `json:"user_email"`
	ActivityID      int64     `json:"activity_id,omitempty"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	PaymentMethodID int64     `json:"payment_method_id,omitempty"`
	Detail          string    `json:"detail,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
