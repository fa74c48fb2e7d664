package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// VenueRepo provides persistence for the venue catalogue and implements
// booking.VenueStore for the engine's read side.  Venues are never deleted;
// deactivation hides them from the catalogue and blocks new bookings while
// preserving booking history.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, name, address, description, price_per_hour_cents, is_active, created_at, updated_at`

func scanVenue(scan func(dest ...any) error) (*booking.Venue, error) {
	var (
		v     booking.Venue
		price int64
	)
	if err := scan(&v.ID, &v.Name, &v.Address, &v.Description, &price, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.PricePerHour = booking.Cents(price)
	return &v, nil
}

// Create inserts a venue and reads the row back so the ID, flags and
// timestamps reflect what the database stored.
func (r *VenueRepo) Create(ctx context.Context, v *booking.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, address, description, price_per_hour_cents) VALUES (?, ?, ?, ?)`,
		v.Name, v.Address, v.Description, int64(v.PricePerHour))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id).Scan)
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

// GetVenue returns a venue by id regardless of its active flag, mapping a
// missing row to booking.ErrVenueNotFound.  Callers decide what inactivity
// means for them.
func (r *VenueRepo) GetVenue(ctx context.Context, id uint64) (*booking.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrVenueNotFound
	}
	return v, err
}

// VenueFilter narrows ListActive results.  Zero values mean "no filter";
// price bounds are inclusive and expressed in cents.
type VenueFilter struct {
	Search   string
	MinPrice booking.Cents
	MaxPrice booking.Cents
}

// ListActive returns active venues newest first.  A non-empty search term
// matches against name and address.
func (r *VenueRepo) ListActive(ctx context.Context, f VenueFilter) ([]booking.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues WHERE is_active = 1`
	args := []any{}
	if f.Search != "" {
		q += ` AND (name LIKE ? OR address LIKE ?)`
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	if f.MinPrice > 0 {
		q += ` AND price_per_hour_cents >= ?`
		args = append(args, int64(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q += ` AND price_per_hour_cents <= ?`
		args = append(args, int64(f.MaxPrice))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]booking.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a venue's mutable fields.  Changing the hourly rate
// never touches existing bookings; their prices were fixed at creation.
func (r *VenueRepo) Update(ctx context.Context, v *booking.Venue) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, address = ?, description = ?, price_per_hour_cents = ?, is_active = ? WHERE id = ?`,
		v.Name, v.Address, v.Description, int64(v.PricePerHour), v.IsActive, v.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Deactivate soft-deletes a venue.  Existing bookings keep their history;
// new bookings and availability lookups start failing immediately.
func (r *VenueRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
