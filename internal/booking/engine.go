package booking

import (
	"context"
	"errors"
	"time"
)

// VenueStore is the read-only venue lookup the engine depends on.  The
// catalogue itself (CRUD, search) lives outside the engine.
type VenueStore interface {
	// GetVenue returns the venue or ErrVenueNotFound.
	GetVenue(ctx context.Context, id uint64) (*Venue, error)
}

// BookingStore is the persistence contract for bookings.  Implementations
// are expected to run against a shared relational store; an in-memory
// implementation backs the engine tests.
type BookingStore interface {
	// Insert persists b and fills in its ID and timestamps.  The overlap
	// check must be re-run atomically with the write (for the MySQL
	// implementation: inside a transaction that locks the venue row), and
	// ErrSlotAlreadyBooked returned when a blocking booking overlaps.
	// This is what closes the check-then-insert race: the engine's earlier
	// conflict read is only a fast-fail courtesy.
	Insert(ctx context.Context, b *Booking) error

	// FindOverlapping returns bookings on (venueID, date) in a blocking
	// status whose half-open interval overlaps [start, end).  excludeID,
	// when non-zero, omits that booking from consideration.
	FindOverlapping(ctx context.Context, venueID uint64, date string, start, end TimeOfDay, excludeID uint64) ([]Booking, error)

	// GetByID returns any booking by id or ErrNotFound.
	GetByID(ctx context.Context, id uint64) (*Booking, error)

	// GetByIDForUser returns the booking only when owned by userID;
	// absent and foreign-owned bookings both yield ErrNotFound.
	GetByIDForUser(ctx context.Context, id, userID uint64) (*Booking, error)

	// UpdateStatus moves booking id to status "to" only while its current
	// status is one of "from", reporting whether a row changed.  The guard
	// runs inside the update statement so concurrent transitions cannot
	// both win.
	UpdateStatus(ctx context.Context, id uint64, to Status, from ...Status) (bool, error)

	// CompleteElapsed marks every blocking booking whose interval has
	// fully elapsed (date before today, or today with end_time at or
	// before cutoff) as completed and returns how many rows changed.
	CompleteElapsed(ctx context.Context, today string, cutoff TimeOfDay) (int64, error)
}

// Engine is the booking allocator and lifecycle authority.  It owns
// validation order, conflict detection, price derivation and the
// availability projection; it holds no mutable state of its own, so a
// single instance is safe for concurrent use.
type Engine struct {
	venues   VenueStore
	bookings BookingStore
	window   Window
}

// NewEngine wires an Engine to its stores and operating window.
func NewEngine(venues VenueStore, bookings BookingStore, window Window) *Engine {
	return &Engine{venues: venues, bookings: bookings, window: window}
}

// Window exposes the operating window for handlers that present it.
func (e *Engine) Window() Window { return e.window }

// Overlaps is the half-open interval overlap rule: [s1,e1) and [s2,e2)
// conflict iff s1 < e2 && e1 > s2.  Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && e1 > s2
}

// storeErr maps context expiry onto ErrUnavailable so callers see a single
// infrastructure error class, and passes domain sentinels through.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable
	}
	return err
}

// HasConflict reports whether [start, end) on (venueID, date) overlaps any
// pending or confirmed booking, optionally excluding one booking id.
func (e *Engine) HasConflict(ctx context.Context, venueID uint64, date string, start, end TimeOfDay, excludeID uint64) (bool, error) {
	rows, err := e.bookings.FindOverlapping(ctx, venueID, date, start, end, excludeID)
	if err != nil {
		return false, storeErr(err)
	}
	return len(rows) > 0, nil
}

// CreateBooking validates, prices and persists a new pending booking.
// Validation is fail-fast in a fixed order: interval shape, operating
// window, venue availability, then conflicts.  The final word on conflicts
// belongs to the store's atomic insert; a concurrent winner surfaces here
// as ErrSlotAlreadyBooked even after the pre-check passed.
func (e *Engine) CreateBooking(ctx context.Context, userID, venueID uint64, date string, start, end TimeOfDay) (*Booking, error) {
	if end <= start {
		return nil, ErrInvalidInterval
	}
	if !e.window.Contains(start, end) {
		return nil, ErrOutsideOperatingHours
	}

	v, err := e.venues.GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			return nil, ErrVenueUnavailable
		}
		return nil, storeErr(err)
	}
	if !v.IsActive {
		return nil, ErrVenueUnavailable
	}

	conflict, err := e.HasConflict(ctx, venueID, date, start, end, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotAlreadyBooked
	}

	b := &Booking{
		UserID:     userID,
		VenueID:    venueID,
		Date:       date,
		Start:      start,
		End:        end,
		TotalPrice: ComputePrice(v.PricePerHour, start, end),
		Status:     StatusPending,
	}
	if err := e.bookings.Insert(ctx, b); err != nil {
		return nil, storeErr(err)
	}
	return b, nil
}

// GetBooking returns a booking visible to userID, hiding other users'
// bookings behind ErrNotFound.
func (e *Engine) GetBooking(ctx context.Context, id, userID uint64) (*Booking, error) {
	b, err := e.bookings.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return b, nil
}

// CancelBooking transitions a pending or confirmed booking to cancelled on
// behalf of its owner.  A booking that does not exist and a booking owned
// by someone else are reported identically as ErrNotFound; terminal
// bookings yield ErrInvalidTransition.
func (e *Engine) CancelBooking(ctx context.Context, id, actingUserID uint64) (*Booking, error) {
	b, err := e.bookings.GetByIDForUser(ctx, id, actingUserID)
	if err != nil {
		return nil, storeErr(err)
	}
	if b.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	ok, err := e.bookings.UpdateStatus(ctx, id, StatusCancelled, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		// Lost a race with the completion sweep or another transition.
		return nil, ErrInvalidTransition
	}
	b.Status = StatusCancelled
	return b, nil
}

// ConfirmBooking moves a pending booking to confirmed.  The trigger is an
// operator action; the engine only enforces the precondition.
func (e *Engine) ConfirmBooking(ctx context.Context, id uint64) (*Booking, error) {
	b, err := e.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	ok, err := e.bookings.UpdateStatus(ctx, id, StatusConfirmed, StatusPending)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	b.Status = StatusConfirmed
	return b, nil
}

// CompleteElapsed sweeps bookings whose interval has fully passed into the
// completed state.  It is driven by a scheduler, not by user requests.
func (e *Engine) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	today := now.Format("2006-01-02")
	cutoff := TimeOfDay(now.Hour()*60 + now.Minute())
	n, err := e.bookings.CompleteElapsed(ctx, today, cutoff)
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

// Availability is the per-date projection of a venue's bookings onto the
// hourly grid, bundled with the venue fields clients show next to it.
type Availability struct {
	Venue *Venue
	Date  string
	Slots []Slot
}

// GetAvailability projects blocking bookings for (venueID, date) onto the
// fixed hourly grid.  The slice always has Window().Hours() entries in
// ascending order.  This is a read-only projection and safe to run
// concurrently with creations; a stale result is at worst one booking
// behind.
func (e *Engine) GetAvailability(ctx context.Context, venueID uint64, date string) (*Availability, error) {
	v, err := e.venues.GetVenue(ctx, venueID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !v.IsActive {
		return nil, ErrVenueNotFound
	}

	booked, err := e.bookings.FindOverlapping(ctx, venueID, date, e.window.Opening, e.window.Closing, 0)
	if err != nil {
		return nil, storeErr(err)
	}

	slots := e.window.Grid()
	for i := range slots {
		for _, b := range booked {
			if Overlaps(slots[i].Start, slots[i].End, b.Start, b.End) {
				slots[i].IsAvailable = false
				break
			}
		}
	}
	return &Availability{Venue: v, Date: date, Slots: slots}, nil
}
