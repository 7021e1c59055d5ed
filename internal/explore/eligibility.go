package explore

import (
	"time"

	"github.com/mabarin/mabarin-web/internal/model"
)

// Eligibility is whether an activity can still be booked, derived from the
// wall clock and the participant count.
type Eligibility int

const (
	Bookable Eligibility = iota
	Ended
	FullyBooked
)

// Check decides eligibility at now.  Ended wins over FullyBooked.  An
// activity whose times cannot be parsed is never considered ended, and one
// with no slots is always fully booked.
func Check(a model.SportActivity, now time.Time, loc *time.Location) Eligibility {
	if end, err := a.EndsAt(loc); err == nil && end.Before(now) {
		return Ended
	}
	if a.ParticipantCount() >= a.Slot {
		return FullyBooked
	}
	return Bookable
}

func (e Eligibility) CanBook() bool { return e == Bookable }

// Label is the text of the booking button.
func (e Eligibility) Label() string {
	switch e {
	case Ended:
		return "Event Ended"
	case FullyBooked:
		return "Fully Booked"
	default:
		return "Book Now"
	}
}

func (e Eligibility) String() string {
	switch e {
	case Ended:
		return "ended"
	case FullyBooked:
		return "fully_booked"
	default:
		return "bookable"
	}
}

func (e Eligibility) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
