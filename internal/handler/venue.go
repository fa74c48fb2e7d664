package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// VenueHandler serves the public venue catalogue and per-date availability.
// All endpoints here are read-only and require no authentication; the
// response cache middleware sits in front of them.
type VenueHandler struct {
	Venues *repository.VenueRepo
	Engine *booking.Engine
}

// NewVenueHandler constructs a VenueHandler with the provided dependencies.
func NewVenueHandler(venues *repository.VenueRepo, eng *booking.Engine) *VenueHandler {
	if venues == nil || eng == nil {
		panic("nil dependency passed to NewVenueHandler")
	}
	return &VenueHandler{Venues: venues, Engine: eng}
}

// List handles GET /v1/venues.  It returns active venues, optionally
// filtered by a ?search= term matched against name and address, and by
// ?min_price= / ?max_price= hourly-rate bounds (inclusive, decimal).
func (h *VenueHandler) List(c echo.Context) error {
	f := repository.VenueFilter{Search: strings.TrimSpace(c.QueryParam("search"))}
	if s := strings.TrimSpace(c.QueryParam("min_price")); s != "" {
		p, err := booking.ParseCents(s)
		if err != nil || p < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price must be a non-negative decimal"})
		}
		f.MinPrice = p
	}
	if s := strings.TrimSpace(c.QueryParam("max_price")); s != "" {
		p, err := booking.ParseCents(s)
		if err != nil || p < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_price must be a non-negative decimal"})
		}
		f.MaxPrice = p
	}
	items, err := h.Venues.ListActive(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venues"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/venues/:id.  Inactive venues are indistinguishable
// from missing ones.
func (h *VenueHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	v, err := h.Venues.GetVenue(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venue"})
	}
	if !v.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}

// availabilityResp bundles the venue summary with its slot grid for one date.
type availabilityResp struct {
	VenueID      uint64         `json:"venue_id"`
	VenueName    string         `json:"venue_name"`
	Date         string         `json:"date"`
	PricePerHour booking.Cents  `json:"price_per_hour"`
	Slots        []booking.Slot `json:"slots"`
}

// Availability handles GET /v1/venues/:id/availability?date=YYYY-MM-DD.
// It projects the venue's bookings for that date onto the hourly grid.
func (h *VenueHandler) Availability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	date, err := booking.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	av, err := h.Engine.GetAvailability(c.Request().Context(), id, date)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrVenueNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		case errors.Is(err, booking.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}

	return c.JSON(http.StatusOK, availabilityResp{
		VenueID:      av.Venue.ID,
		VenueName:    av.Venue.Name,
		Date:         av.Date,
		PricePerHour: av.Venue.PricePerHour,
		Slots:        av.Slots,
	})
}
