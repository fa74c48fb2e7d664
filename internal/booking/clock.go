package booking

import (
	"errors"
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes from midnight.  Bookings
// carry minute precision, so the valid range is 0..1440 inclusive (1440
// only ever appears as an interval end at midnight).  It marshals as
// "HH:MM" on the wire.
type TimeOfDay int

// ErrBadTime is returned when a time-of-day string cannot be parsed.
var ErrBadTime = errors.New("invalid time of day, expected HH:MM")

// ParseTimeOfDay parses "HH:MM" (24-hour clock) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, ErrBadTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrBadTime
	}
	return TimeOfDay(h*60 + m), nil
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON emits the "HH:MM" form so availability slots and bookings
// serialize the way clients expect.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Minutes returns the number of minutes from midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// ParseDate validates a calendar date in YYYY-MM-DD form and returns the
// canonical representation.  Booking dates carry no timezone component;
// they are interpreted in the venue's local operating context.
func ParseDate(s string) (string, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d.Format("2006-01-02"), nil
}

// Window is the daily operating window [Opening, Closing) within which
// bookings are permitted.  All venues currently share one window; it is
// injected from configuration rather than hardcoded so per-venue hours can
// be added without touching the conflict or availability logic.
type Window struct {
	Opening TimeOfDay
	Closing TimeOfDay
}

// NewWindow builds a Window from whole opening/closing hours.
func NewWindow(openingHour, closingHour int) Window {
	return Window{
		Opening: TimeOfDay(openingHour * 60),
		Closing: TimeOfDay(closingHour * 60),
	}
}

// Contains reports whether the half-open interval [start, end) lies fully
// inside the operating window.  Touching either boundary is allowed.
func (w Window) Contains(start, end TimeOfDay) bool {
	return start >= w.Opening && end <= w.Closing
}

// Hours is the number of 1-hour display slots in the window.
func (w Window) Hours() int {
	return (int(w.Closing) - int(w.Opening)) / 60
}

// Slot is a fixed 1-hour division of the operating window.  Slots exist
// only for availability display; booking intervals remain free-form within
// the window.
type Slot struct {
	Start       TimeOfDay `json:"start_time"`
	End         TimeOfDay `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// Grid returns the window's hourly slots in ascending order, all marked
// available.  The length is always Hours(), regardless of bookings.
func (w Window) Grid() []Slot {
	slots := make([]Slot, 0, w.Hours())
	for s := w.Opening; s < w.Closing; s += 60 {
		slots = append(slots, Slot{Start: s, End: s + 60, IsAvailable: true})
	}
	return slots
}
