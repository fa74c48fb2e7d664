package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	queue_publisher "github.com/iliyamo/venue-booking/internal/service"
)

// AdminHandler bundles repositories for operators to manage the venue
// catalogue and confirm bookings.  RequireRole("ADMIN") guards every route
// registered against it.
type AdminHandler struct {
	Venues *repository.VenueRepo
	Engine *booking.Engine
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency is nil.
func NewAdminHandler(venues *repository.VenueRepo, eng *booking.Engine) *AdminHandler {
	if venues == nil || eng == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Venues: venues, Engine: eng}
}

type venueReq struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	PricePerHour string `json:"price_per_hour"`
	IsActive     *bool  `json:"is_active"`
}

// CreateVenue handles POST /v1/admin/venues.  The hourly rate arrives as a
// decimal string and is stored in cents.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	rate, err := booking.ParseCents(req.PricePerHour)
	if err != nil || rate < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be a non-negative decimal"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := &booking.Venue{
		Name:         req.Name,
		Address:      strings.TrimSpace(req.Address),
		Description:  strings.TrimSpace(req.Description),
		PricePerHour: rate,
	}
	if err := h.Venues.Create(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create venue"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": v})
}

// UpdateVenue handles PATCH /v1/admin/venues/:id.  Absent fields keep their
// stored values.  Rate changes never touch existing bookings.
func (h *AdminHandler) UpdateVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Venues.GetVenue(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venue"})
	}

	if s := strings.TrimSpace(req.Name); s != "" {
		v.Name = s
	}
	if s := strings.TrimSpace(req.Address); s != "" {
		v.Address = s
	}
	if s := strings.TrimSpace(req.Description); s != "" {
		v.Description = s
	}
	if strings.TrimSpace(req.PricePerHour) != "" {
		rate, err := booking.ParseCents(req.PricePerHour)
		if err != nil || rate < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be a non-negative decimal"})
		}
		v.PricePerHour = rate
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	ok, err := h.Venues.Update(ctx, v)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update venue"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}

// DeactivateVenue handles DELETE /v1/admin/venues/:id.  Venues are soft
// deleted: history stays, new bookings and availability stop immediately.
func (h *AdminHandler) DeactivateVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Venues.Deactivate(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate venue"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmBooking handles PATCH /v1/admin/bookings/:id/confirm.  Only a
// pending booking can be confirmed; anything else yields 409.
func (h *AdminHandler) ConfirmBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.ConfirmBooking(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
		case errors.Is(err, booking.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
	}

	venueName := ""
	if v, err := h.Venues.GetVenue(ctx, b.VenueID); err == nil {
		venueName = v.Name
	}
	ev := queue.BookingEvent{
		Type:       "booking.confirmed",
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
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingEvent(pctx, ev)
	}()

	return c.JSON(http.StatusOK, echo.Map{"item": b})
}
