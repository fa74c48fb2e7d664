package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// BookingRepo is the MySQL implementation of booking.BookingStore.  Dates
// are stored in DATE columns and times of day in TIME columns; all
// timestamp columns are UTC.  A composite index on (venue_id,
// booking_date) backs the overlap queries.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their own
// transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, venue_id, booking_date, start_time, end_time, total_price_cents, status, created_at, updated_at`

// sqlTime renders a TimeOfDay for a TIME column.
func sqlTime(t booking.TimeOfDay) string { return t.String() + ":00" }

// parseSQLTime reads a TIME column value ("HH:MM:SS") back into a
// TimeOfDay, ignoring the seconds the engine never sets.
func parseSQLTime(s string) (booking.TimeOfDay, error) {
	if len(s) >= 5 {
		s = s[:5]
	}
	return booking.ParseTimeOfDay(s)
}

// scanBooking maps one bookings row onto the domain type.  The scan
// argument abstracts over *sql.Row and *sql.Rows.
func scanBooking(scan func(dest ...any) error) (*booking.Booking, error) {
	var (
		b          booking.Booking
		date       time.Time
		start, end string
		price      int64
		status     string
	)
	if err := scan(&b.ID, &b.UserID, &b.VenueID, &date, &start, &end, &price, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Date = date.Format("2006-01-02")
	s, err := parseSQLTime(start)
	if err != nil {
		return nil, err
	}
	e, err := parseSQLTime(end)
	if err != nil {
		return nil, err
	}
	b.Start, b.End = s, e
	b.TotalPrice = booking.Cents(price)
	b.Status = booking.Status(status)
	return &b, nil
}

// Insert persists a new booking.  The venue row is locked with SELECT ...
// FOR UPDATE so that, for one venue, concurrent creations serialize at the
// database: the overlap re-check and the insert below happen atomically
// with respect to every other creation attempt, across all service
// instances sharing the database.  Bookings for other venues proceed in
// parallel since they lock different rows.
func (r *BookingRepo) Insert(ctx context.Context, b *booking.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Serialization point for this venue.
	var venueID uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM venues WHERE id = ? FOR UPDATE`, b.VenueID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrVenueUnavailable
		}
		return err
	}

	// Re-check the overlap under the lock.  Touching endpoints pass: the
	// predicate is the half-open rule start < e AND end > s.
	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE venue_id = ? AND booking_date = ?
		   AND status IN ('pending','confirmed')
		   AND start_time < ? AND end_time > ?`,
		b.VenueID, b.Date, sqlTime(b.End), sqlTime(b.Start)).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return booking.ErrSlotAlreadyBooked
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, venue_id, booking_date, start_time, end_time, total_price_cents, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.VenueID, b.Date, sqlTime(b.Start), sqlTime(b.End), int64(b.TotalPrice), string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	// Read the row back inside the transaction to populate the DB-assigned
	// timestamps.
	stored, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID).Scan)
	if err != nil {
		return err
	}
	b.CreatedAt, b.UpdatedAt = stored.CreatedAt, stored.UpdatedAt

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FindOverlapping returns pending/confirmed bookings on (venueID, date)
// overlapping [start, end) by the half-open rule, ordered by start time.
func (r *BookingRepo) FindOverlapping(ctx context.Context, venueID uint64, date string, start, end booking.TimeOfDay, excludeID uint64) ([]booking.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
	      WHERE venue_id = ? AND booking_date = ?
	        AND status IN ('pending','confirmed')
	        AND start_time < ? AND end_time > ?`
	args := []any{venueID, date, sqlTime(end), sqlTime(start)}
	if excludeID != 0 {
		q += ` AND id != ?`
		args = append(args, excludeID)
	}
	q += ` ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]booking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns any booking by id, mapping a missing row to ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*booking.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	return b, err
}

// GetByIDForUser restricts the lookup to the owning user.  A booking owned
// by someone else scans as no row, so callers cannot distinguish it from a
// nonexistent one.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*booking.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ?`, id, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	return b, err
}

// UpdateStatus performs a guarded transition: the row changes only while
// its status is still one of "from", so two racing transitions cannot both
// report success.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, to booking.Status, from ...booking.Status) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("update status: empty precondition set")
	}
	ph := make([]string, len(from))
	args := []any{string(to), id}
	for i, f := range from {
		ph[i] = "?"
		args = append(args, string(f))
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status IN (`+strings.Join(ph, ",")+`)`,
		args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CompleteElapsed moves every pending/confirmed booking whose interval has
// fully passed into the completed state and reports how many changed.
func (r *BookingRepo) CompleteElapsed(ctx context.Context, today string, cutoff booking.TimeOfDay) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = 'completed'
		 WHERE status IN ('pending','confirmed')
		   AND (booking_date < ? OR (booking_date = ? AND end_time <= ?))`,
		today, today, sqlTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BookingDetail is a booking joined with the venue fields list views show
// alongside it.
type BookingDetail struct {
	booking.Booking
	VenueName    string `json:"venue_name"`
	VenueAddress string `json:"venue_address"`
}

// ListByUser returns the user's bookings newest first, each with its venue
// summary.  An empty slice means no bookings, not an error.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.venue_id, b.booking_date, b.start_time, b.end_time,
		        b.total_price_cents, b.status, b.created_at, b.updated_at,
		        v.name, v.address
		 FROM bookings b
		 JOIN venues v ON v.id = b.venue_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d          BookingDetail
			date       time.Time
			start, end string
			price      int64
			status     string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.VenueID, &date, &start, &end,
			&price, &status, &d.CreatedAt, &d.UpdatedAt, &d.VenueName, &d.VenueAddress); err != nil {
			return nil, err
		}
		d.Date = date.Format("2006-01-02")
		if d.Start, err = parseSQLTime(start); err != nil {
			return nil, err
		}
		if d.End, err = parseSQLTime(end); err != nil {
			return nil, err
		}
		d.TotalPrice = booking.Cents(price)
		d.Status = booking.Status(status)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
