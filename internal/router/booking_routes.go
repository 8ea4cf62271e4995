package router

import (
	"github.com/labstack/echo/v4"
)

// registerBooking mounts ticket booking. Ownership of a booking is checked
// in the service, not here.
func registerBooking(e *echo.Echo, h Handlers, limited, authed, admin, anyone, user echo.MiddlewareFunc) {
	e.POST("/book/ticket", h.Bookings.Create, authed, user, limited)
	e.PUT("/booking/cancel/:bookingId", h.Bookings.Cancel, authed, user)
	e.GET("/booking/history/:userId", h.Bookings.History, authed, anyone)
	e.GET("/booking/get-all", h.Bookings.List, authed, admin)
	e.GET("/booking/report/theaters", h.Bookings.TheaterReport, authed, admin)
	e.GET("/booking/report/movies", h.Bookings.MovieReport, authed, admin)
}
