package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	queue_publisher "github.com/iliyamo/venue-booking/internal/service"
)

// BookingHandler serves the customer booking endpoints: create, list, get
// and cancel.  JWT authentication and role validation run in middleware;
// methods return 401 only when the user ID cannot be read from context.
type BookingHandler struct {
	Engine   *booking.Engine
	Bookings *repository.BookingRepo
	Venues   *repository.VenueRepo
}

// NewBookingHandler constructs a BookingHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewBookingHandler(eng *booking.Engine, bookings *repository.BookingRepo, venues *repository.VenueRepo) *BookingHandler {
	if eng == nil || bookings == nil || venues == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, Bookings: bookings, Venues: venues}
}

type createBookingReq struct {
	VenueID   uint64 `json:"venue_id"`
	Date      string `json:"booking_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Create handles POST /v1/bookings.  The engine owns validation order and
// conflict detection; this handler only translates its sentinels onto HTTP
// statuses.  A lost creation race surfaces as 409 exactly like a plain
// conflict.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.VenueID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id is required"})
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_date must be YYYY-MM-DD"})
	}
	start, err := booking.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be HH:MM"})
	}
	end, err := booking.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.CreateBooking(ctx, userID, req.VenueID, date, start, end)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidInterval):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
		case errors.Is(err, booking.ErrOutsideOperatingHours):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is outside operating hours"})
		case errors.Is(err, booking.ErrVenueUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue is not available for booking"})
		case errors.Is(err, booking.ErrSlotAlreadyBooked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked"})
		case errors.Is(err, booking.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	h.publishEvent(c, "booking.created", b)
	return c.JSON(http.StatusCreated, echo.Map{"item": b})
}

// List handles GET /v1/bookings.  It returns the user's bookings newest
// first, each with its venue summary.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.  Bookings owned by other users are
// reported as not found.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Engine.GetBooking(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Cancel handles PATCH /v1/bookings/:id/cancel.  Only the owner may cancel;
// cancelled and completed bookings yield 409.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.CancelBooking(ctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
		case errors.Is(err, booking.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}

	h.publishEvent(c, "booking.cancelled", b)
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// publishEvent emits a booking lifecycle event.  Publishing is best effort:
// broker failures are logged by the publisher, never surfaced to clients.
func (h *BookingHandler) publishEvent(c echo.Context, typ string, b *booking.Booking) {
	venueName := ""
	if v, err := h.Venues.GetVenue(c.Request().Context(), b.VenueID); err == nil {
		venueName = v.Name
	}
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		VenueID:    b.VenueID,
		VenueName:  venueName,
		Date:       b.Date,
		StartTime:  b.Start.String(),
		EndTime:    b.End.String(),
		TotalPrice: b.TotalPrice.String(),
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingEvent(ctx, ev)
	}()
}
