package model

import "strings"

// Transaction is a booking as recorded by the upstream API.  The list and
// detail endpoints share this shape.
type Transaction struct {
	ID               FlexID           `json:"id"`
	InvoiceID        string           `json:"invoice_id"`
	OrderID          string           `json:"order_id,omitempty"`
	TotalAmount      int64            `json:"total_amount"`
	Status           string           `json:"status"` // pending | paid | success | ...
	PaymentMethodID  int64            `json:"payment_method_id"`
	ProofPaymentURL  string           `json:"proof_payment_url,omitempty"`
	OrderDate        string           `json:"order_date"`
	ExpiredDate      string           `json:"expired_date,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
	TransactionItems TransactionItems `json:"transaction_items"`
}

type TransactionItems struct {
	SportActivityID int64 `json:"sport_activity_id"`
	SportActivities struct {
		Title        string `json:"title"`
		Address      string `json:"address"`
		ActivityDate string `json:"activity_date"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
	} `json:"sport_activities"`
}

// Tone buckets a status into the badge colours used by the templates.
func (t Transaction) Tone() string {
	switch strings.ToLower(t.Status) {
	case "success", "paid":
		return "green"
	case "pending":
		return "yellow"
	default:
		return "gray"
	}
}

// Placed returns the order date, or the creation time when it is missing.
func (t Transaction) Placed() string {
	if t.OrderDate != "" {
		return t.OrderDate
	}
	return t.CreatedAt
}
