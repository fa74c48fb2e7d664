package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RegisterPublic registers unauthenticated catalogue endpoints.  Guests can
// browse active venues and check per-date availability before registering.
// The extra middleware (response cache) is applied to this group only.
func RegisterPublic(e *echo.Echo, v *handler.VenueHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/venues", v.List)
	g.GET("/venues/:id", v.Get)
	// Availability for a single date: ?date=YYYY-MM-DD is required.
	g.GET("/venues/:id/availability", v.Availability)
}

// RegisterAdmin registers operator endpoints under /v1/admin.  All routes
// require a valid JWT and the ADMIN role.  Admins manage the venue
// catalogue and confirm pending bookings.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/venues", a.CreateVenue)
	g.PATCH("/venues/:id", a.UpdateVenue)
	g.DELETE("/venues/:id", a.DeactivateVenue)
	g.PATCH("/bookings/:id/confirm", a.ConfirmBooking)
}
