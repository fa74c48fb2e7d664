// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingEvent is published on every booking lifecycle change (created,
// confirmed, cancelled).  It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingEvent struct {
	Type       string `json:"type"` // booking.created | booking.confirmed | booking.cancelled
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	VenueID    uint64 `json:"venue_id"`
	VenueName  string `json:"venue_name"`
	Date       string `json:"booking_date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TotalPrice string `json:"total_price"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}
