package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memVenues is a map-backed VenueStore.
type memVenues struct {
	mu     sync.RWMutex
	venues map[uint64]*Venue
}

func newMemVenues(vs ...*Venue) *memVenues {
	m := &memVenues{venues: make(map[uint64]*Venue)}
	for _, v := range vs {
		m.venues[v.ID] = v
	}
	return m
}

func (m *memVenues) GetVenue(ctx context.Context, id uint64) (*Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

// memBookings is a mutex-guarded BookingStore.  Insert holds the lock
// across the overlap re-check and the write, mirroring the serialization
// the MySQL implementation gets from its venue-row lock.
type memBookings struct {
	mu     sync.Mutex
	nextID uint64
	rows   []Booking
}

func newMemBookings() *memBookings { return &memBookings{nextID: 1} }

func (m *memBookings) Insert(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.VenueID == b.VenueID && r.Date == b.Date && r.Status.Blocking() &&
			Overlaps(r.Start, r.End, b.Start, b.End) {
			return ErrSlotAlreadyBooked
		}
	}
	b.ID = m.nextID
	m.nextID++
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.rows = append(m.rows, *b)
	return nil
}

func (m *memBookings) FindOverlapping(ctx context.Context, venueID uint64, date string, start, end TimeOfDay, excludeID uint64) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, r := range m.rows {
		if r.VenueID != venueID || r.Date != date || !r.Status.Blocking() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if Overlaps(r.Start, r.End, start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memBookings) GetByID(ctx context.Context, id uint64) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBookings) GetByIDForUser(ctx context.Context, id, userID uint64) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBookings) UpdateStatus(ctx context.Context, id uint64, to Status, from ...Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		for _, f := range from {
			if m.rows[i].Status == f {
				m.rows[i].Status = to
				m.rows[i].UpdatedAt = time.Now().UTC()
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (m *memBookings) CompleteElapsed(ctx context.Context, today string, cutoff TimeOfDay) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if !m.rows[i].Status.Blocking() {
			continue
		}
		if m.rows[i].Date < today || (m.rows[i].Date == today && m.rows[i].End <= cutoff) {
			m.rows[i].Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

const testDate = "2025-06-15"

func testEngine(t *testing.T, vs ...*Venue) (*Engine, *memBookings) {
	t.Helper()
	if len(vs) == 0 {
		vs = []*Venue{{ID: 1, Name: "Main Hall", PricePerHour: Cents(150000), IsActive: true}}
	}
	store := newMemBookings()
	return NewEngine(newMemVenues(vs...), store, NewWindow(9, 22)), store
}

func at(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

func TestCreateBooking(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	b, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "12:00"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ID == 0 {
		t.Error("booking ID not assigned")
	}
	if b.Status != StatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.TotalPrice.String() != "3000.00" { // 1500.00/h x 2h
		t.Errorf("total price = %s, want 3000.00", b.TotalPrice)
	}
}

func TestCreateBookingValidationOrder(t *testing.T) {
	eng, _ := testEngine(t, &Venue{ID: 2, Name: "Closed", PricePerHour: Cents(100), IsActive: false})
	ctx := context.Background()

	// Interval shape is checked before the window, even when both are wrong.
	if _, err := eng.CreateBooking(ctx, 7, 2, testDate, at(t, "23:00"), at(t, "08:00")); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("reversed interval: err = %v, want ErrInvalidInterval", err)
	}
	// The window is checked before the venue lookup.
	if _, err := eng.CreateBooking(ctx, 7, 99, testDate, at(t, "08:00"), at(t, "10:00")); !errors.Is(err, ErrOutsideOperatingHours) {
		t.Errorf("early start: err = %v, want ErrOutsideOperatingHours", err)
	}
	if _, err := eng.CreateBooking(ctx, 7, 99, testDate, at(t, "21:00"), at(t, "22:01")); !errors.Is(err, ErrOutsideOperatingHours) {
		t.Errorf("late end: err = %v, want ErrOutsideOperatingHours", err)
	}
	// Missing and inactive venues report the same way.
	if _, err := eng.CreateBooking(ctx, 7, 99, testDate, at(t, "10:00"), at(t, "11:00")); !errors.Is(err, ErrVenueUnavailable) {
		t.Errorf("missing venue: err = %v, want ErrVenueUnavailable", err)
	}
	if _, err := eng.CreateBooking(ctx, 7, 2, testDate, at(t, "10:00"), at(t, "11:00")); !errors.Is(err, ErrVenueUnavailable) {
		t.Errorf("inactive venue: err = %v, want ErrVenueUnavailable", err)
	}
}

func TestCreateBookingBoundaryHours(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	if _, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "09:00"), at(t, "10:00")); err != nil {
		t.Errorf("booking at opening: %v", err)
	}
	if _, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "21:00"), at(t, "22:00")); err != nil {
		t.Errorf("booking ending at closing: %v", err)
	}
}

func TestCreateBookingConflicts(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	if _, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "12:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	// Overlapping interval is rejected.
	if _, err := eng.CreateBooking(ctx, 8, 1, testDate, at(t, "11:00"), at(t, "13:00")); !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Errorf("overlap: err = %v, want ErrSlotAlreadyBooked", err)
	}
	// Touching intervals do not conflict.
	if _, err := eng.CreateBooking(ctx, 8, 1, testDate, at(t, "12:00"), at(t, "13:00")); err != nil {
		t.Errorf("touching interval: %v", err)
	}
	// Same interval on another date is independent.
	if _, err := eng.CreateBooking(ctx, 8, 1, "2025-06-16", at(t, "10:00"), at(t, "12:00")); err != nil {
		t.Errorf("other date: %v", err)
	}
}

func TestCancelledBookingDoesNotBlock(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	b, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "12:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.CancelBooking(ctx, b.ID, 7); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := eng.CreateBooking(ctx, 8, 1, testDate, at(t, "10:00"), at(t, "12:00")); err != nil {
		t.Errorf("rebooking a cancelled slot: %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	eng, store := testEngine(t)
	ctx := context.Background()

	b, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "12:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Someone else's booking must look nonexistent, not forbidden.
	if _, err := eng.CancelBooking(ctx, b.ID, 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign cancel: err = %v, want ErrNotFound", err)
	}

	got, err := eng.CancelBooking(ctx, b.ID, 7)
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}

	// Terminal states refuse further transitions.
	if _, err := eng.CancelBooking(ctx, b.ID, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double cancel: err = %v, want ErrInvalidTransition", err)
	}

	done, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "13:00"), at(t, "14:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.UpdateStatus(ctx, done.ID, StatusCompleted, StatusPending); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if _, err := eng.CancelBooking(ctx, done.ID, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel completed: err = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmBooking(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	b, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "11:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := eng.ConfirmBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("status = %q, want confirmed", got.Status)
	}
	if _, err := eng.ConfirmBooking(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double confirm: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := eng.ConfirmBooking(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("confirm missing: err = %v, want ErrNotFound", err)
	}

	// A confirmed booking still blocks the slot.
	if _, err := eng.CreateBooking(ctx, 8, 1, testDate, at(t, "10:30"), at(t, "11:30")); !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Errorf("overlap with confirmed: err = %v, want ErrSlotAlreadyBooked", err)
	}
}

func TestGetAvailability(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	av, err := eng.GetAvailability(ctx, 1, testDate)
	if err != nil {
		t.Fatalf("empty availability: %v", err)
	}
	if len(av.Slots) != 13 {
		t.Fatalf("slot count = %d, want 13", len(av.Slots))
	}
	for i, s := range av.Slots {
		if !s.IsAvailable {
			t.Errorf("slot %d (%s): should be available with no bookings", i, s.Start)
		}
	}

	// A 10:00-12:00 booking blocks exactly the 10:00 and 11:00 slots.
	if _, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "10:00"), at(t, "12:00")); err != nil {
		t.Fatalf("create: %v", err)
	}
	av, err = eng.GetAvailability(ctx, 1, testDate)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	for _, s := range av.Slots {
		blocked := s.Start.String() == "10:00" || s.Start.String() == "11:00"
		if s.IsAvailable == blocked {
			t.Errorf("slot %s: is_available = %v", s.Start, s.IsAvailable)
		}
	}

	// A booking crossing a slot boundary blocks both touched slots.
	if _, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "14:30"), at(t, "15:30")); err != nil {
		t.Fatalf("create: %v", err)
	}
	av, _ = eng.GetAvailability(ctx, 1, testDate)
	for _, s := range av.Slots {
		if (s.Start.String() == "14:00" || s.Start.String() == "15:00") && s.IsAvailable {
			t.Errorf("slot %s: should be blocked by 14:30-15:30 booking", s.Start)
		}
	}

	if _, err := eng.GetAvailability(ctx, 99, testDate); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("missing venue: err = %v, want ErrVenueNotFound", err)
	}
}

func TestGetAvailabilityInactiveVenue(t *testing.T) {
	eng, _ := testEngine(t, &Venue{ID: 3, Name: "Shut", PricePerHour: Cents(100), IsActive: false})
	if _, err := eng.GetAvailability(context.Background(), 3, testDate); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("inactive venue: err = %v, want ErrVenueNotFound", err)
	}
}

func TestCompleteElapsed(t *testing.T) {
	eng, store := testEngine(t)
	ctx := context.Background()

	past, err := eng.CreateBooking(ctx, 7, 1, "2025-06-14", at(t, "10:00"), at(t, "12:00"))
	if err != nil {
		t.Fatalf("create past: %v", err)
	}
	ended, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "09:00"), at(t, "10:00"))
	if err != nil {
		t.Fatalf("create ended: %v", err)
	}
	future, err := eng.CreateBooking(ctx, 7, 1, testDate, at(t, "18:00"), at(t, "20:00"))
	if err != nil {
		t.Fatalf("create future: %v", err)
	}

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	n, err := eng.CompleteElapsed(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("swept %d bookings, want 2", n)
	}
	for _, tc := range []struct {
		id   uint64
		want Status
	}{
		{past.ID, StatusCompleted},
		{ended.ID, StatusCompleted},
		{future.ID, StatusPending},
	} {
		b, err := store.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("get %d: %v", tc.id, err)
		}
		if b.Status != tc.want {
			t.Errorf("booking %d: status = %q, want %q", tc.id, b.Status, tc.want)
		}
	}
}

func TestConcurrentCreationSingleWinner(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := eng.CreateBooking(ctx, uint64(i+1), 1, testDate, at(t, "10:00"), at(t, "12:00"))
			errs[i] = err
		}(i)
	}
	close(start)
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotAlreadyBooked):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != workers-1 {
		t.Fatalf("wins = %d, conflicts = %d; want exactly 1 winner and %d conflicts", wins, conflicts, workers-1)
	}
}

func TestNoOverlapInvariant(t *testing.T) {
	eng, store := testEngine(t)
	ctx := context.Background()

	// Fire a mix of overlapping and touching attempts concurrently, then
	// verify the surviving blocking set is pairwise non-overlapping.
	intervals := [][2]string{
		{"09:00", "11:00"}, {"10:00", "12:00"}, {"11:00", "13:00"},
		{"12:00", "14:00"}, {"13:00", "15:00"}, {"09:30", "10:30"},
		{"14:00", "16:00"}, {"15:00", "17:00"}, {"16:00", "18:00"},
	}
	var wg sync.WaitGroup
	for i, iv := range intervals {
		wg.Add(1)
		go func(uid uint64, s, e string) {
			defer wg.Done()
			_, _ = eng.CreateBooking(ctx, uid, 1, testDate, at(t, s), at(t, e))
		}(uint64(i+1), iv[0], iv[1])
	}
	wg.Wait()

	rows, err := store.FindOverlapping(ctx, 1, testDate, at(t, "09:00"), at(t, "22:00"), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if Overlaps(rows[i].Start, rows[i].End, rows[j].Start, rows[j].End) {
				t.Fatalf("accepted bookings overlap: %s-%s and %s-%s",
					rows[i].Start, rows[i].End, rows[j].Start, rows[j].End)
			}
		}
	}
}
