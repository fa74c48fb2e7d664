package booking

import "errors"

// Sentinel errors returned by the engine.  Handlers compare with errors.Is
// and translate each into an HTTP status; anything outside this set is an
// infrastructure failure.  Domain errors (bad input, conflicts) are kept
// distinct from ErrUnavailable so callers can choose different retry
// policies for each class.
var (
	// ErrInvalidInterval: end time is not strictly after start time.
	ErrInvalidInterval = errors.New("end time must be after start time")

	// ErrOutsideOperatingHours: the interval leaves the daily window.
	ErrOutsideOperatingHours = errors.New("interval is outside operating hours")

	// ErrVenueUnavailable: the venue does not exist or is inactive, so it
	// cannot accept new bookings.
	ErrVenueUnavailable = errors.New("venue is not available for booking")

	// ErrSlotAlreadyBooked: the interval overlaps a pending or confirmed
	// booking on the same venue and date.
	ErrSlotAlreadyBooked = errors.New("time slot is already booked")

	// ErrNotFound: no booking with that id is visible to the caller.  A
	// booking owned by someone else reports identically to a nonexistent
	// one so callers cannot probe for other users' bookings.
	ErrNotFound = errors.New("booking not found")

	// ErrVenueNotFound: venue lookup failed (catalogue reads).
	ErrVenueNotFound = errors.New("venue not found")

	// ErrInvalidTransition: the requested status change is not legal from
	// the booking's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnavailable: the storage layer timed out or is unreachable.
	ErrUnavailable = errors.New("storage unavailable")
)
