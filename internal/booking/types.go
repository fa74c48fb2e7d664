// Package booking implements the interval-booking engine: operating-hours
// policy, conflict detection, price derivation, the booking lifecycle and
// per-date availability projection.  Persistence is abstracted behind the
// VenueStore and BookingStore interfaces so the engine itself stays free of
// SQL and can be exercised directly in tests.
package booking

import "time"

// Status is the closed set of booking lifecycle states.  A booking is
// created as pending, may be confirmed by an operator, and ends up either
// cancelled (by its owner) or completed (by the elapsed-time sweep).
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Blocking reports whether a booking in state s excludes overlapping
// intervals on the same venue and date.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Venue is the bookable resource.  The hourly rate is stored in cents and
// never changes a booking's price after creation.  Only active venues
// accept new bookings.
type Venue struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Description  string    `json:"description"`
	PricePerHour Cents     `json:"price_per_hour"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Booking is one accepted reservation of a venue for a half-open interval
// [Start, End) on a single calendar date.  TotalPrice is computed once at
// creation and is immutable afterwards, even if the venue's rate changes.
type Booking struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	VenueID    uint64    `json:"venue_id"`
	Date       string    `json:"booking_date"`
	Start      TimeOfDay `json:"start_time"`
	End        TimeOfDay `json:"end_time"`
	TotalPrice Cents     `json:"total_price"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
