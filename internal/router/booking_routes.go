package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RegisterCustomer registers customer-scoped booking endpoints under /v1.
// All routes require a valid JWT and the CUSTOMER role.  Customers can
// create bookings, list and inspect their own, and cancel the ones that
// have not reached a terminal status.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.List)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id/cancel", h.Cancel)
}
