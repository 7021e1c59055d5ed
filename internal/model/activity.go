package model

import (
	"fmt"
	"strings"
	"time"
)

// SportActivity is a read-only snapshot of an event as served by the
// upstream API.  Participants may exceed Slot; the API owns that rule.
type SportActivity struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	ActivityDate  string         `json:"activity_date"` // YYYY-MM-DD, sometimes a full timestamp
	StartTime     string         `json:"start_time"`    // HH:MM or HH:MM:SS
	EndTime       string         `json:"end_time"`
	Price         int64          `json:"price"`
	Address       string         `json:"address"`
	MapURL        string         `json:"map_url"`
	SportCategory *SportCategory `json:"sport_category,omitempty"`
	City          City           `json:"city"`
	Organizer     Organizer      `json:"organizer"`
	Participants  []Participant  `json:"participants"`
	Slot          int            `json:"slot"`
}

type Organizer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Participant struct {
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// ParticipantCount is the number of booked participants.
func (a SportActivity) ParticipantCount() int { return len(a.Participants) }

// CategoryName falls back to "Sport" when the activity has no category.
func (a SportActivity) CategoryName() string {
	if a.SportCategory == nil || a.SportCategory.Name == "" {
		return "Sport"
	}
	return a.SportCategory.Name
}

// Day parses the date part of ActivityDate at midnight in loc.
func (a SportActivity) Day(loc *time.Location) (time.Time, error) {
	return parseDay(a.ActivityDate, loc)
}

// StartsAt combines ActivityDate and StartTime in loc.
func (a SportActivity) StartsAt(loc *time.Location) (time.Time, error) {
	return combine(a.ActivityDate, a.StartTime, loc)
}

// EndsAt combines ActivityDate and EndTime in loc.  An end time earlier than
// the start time is taken to cross midnight.
func (a SportActivity) EndsAt(loc *time.Location) (time.Time, error) {
	end, err := combine(a.ActivityDate, a.EndTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	if start, err := a.StartsAt(loc); err == nil && end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return end, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		s = s[:10]
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("activity date %q: %w", s, err)
	}
	return d, nil
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := parseDay(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, sec, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, sec, 0, day.Location()), nil
}

func parseClock(s string) (h, m, sec int, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	return 0, 0, 0, fmt.Errorf("activity time %q: unrecognised clock", s)
}
