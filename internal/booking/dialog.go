// Package booking runs the payment-method dialog behind the "Book Now"
// button.
//
//	closed -> loading-methods -> ready -> submitting -> closed
//	                               ^           |
//	                               +-- error --+
//
// A dialog is keyed by session ID and activity ID and lives in a Store
// between requests.  A missing dialog is closed.
package booking

import (
	"errors"
	"time"

	"github.com/mabarin/mabarin-web/internal/model"
)

type Phase string

const (
	Closed     Phase = "closed"
	Loading    Phase = "loading-methods"
	Ready      Phase = "ready"
	Submitting Phase = "submitting"
)

// User-facing messages.
const (
	MsgLoginRequired = "Please login first to book an activity."
	MsgSelectMethod  = "Please select a payment method."
	MsgFailed        = "Booking failed. Please try again."
	MsgError         = "An error occurred during booking."
	MsgBooked        = "Booking successful!"
)

var (
	ErrLoginRequired   = errors.New("booking: login required")
	ErrNoPaymentMethod = errors.New("booking: no payment method selected")
	ErrSubmitting      = errors.New("booking: submission in progress")
	ErrNotOpen         = errors.New("booking: dialog is not open")
)

// Dialog is the persisted snapshot of one booking dialog.
type Dialog struct {
	SessionID  string                `json:"session_id"`
	ActivityID int64                 `json:"activity_id"`
	Phase      Phase                 `json:"phase"`
	Methods    []model.PaymentMethod `json:"methods"`
	SelectedID int64                 `json:"selected_id,omitempty"`
	Error      string                `json:"error,omitempty"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// Selected returns the chosen payment method.
func (d Dialog) Selected() (model.PaymentMethod, bool) {
	if d.SelectedID == 0 {
		return model.PaymentMethod{}, false
	}
	return model.FindPaymentMethod(d.Methods, d.SelectedID)
}

// Open reports whether the dialog is showing.
func (d Dialog) Open() bool { return d.Phase != "" && d.Phase != Closed }

func closedDialog(sid string, activityID int64) Dialog {
	return Dialog{SessionID: sid, ActivityID: activityID, Phase: Closed}
}
