package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/service"
)

type BookingHandler struct {
	bookings *service.BookingService
	log      *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, log: log}
}

func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in service.BookingInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.bookings.CreateBooking(ctx, actor, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusCreated, "Tickets booked successfully", b)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.bookings.CancelBooking(ctx, actor, c.Param("bookingId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Booking cancelled successfully", b)
}

func (h *BookingHandler) History(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	views, err := h.bookings.ViewBookingHistory(ctx, actor, c.Param("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "User booking history fetched successfully", views)
}

func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	views, err := h.bookings.ListAllBookings(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "All bookings fetched successfully", views)
}

func (h *BookingHandler) TheaterReport(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.bookings.BookingsGroupedByTheater(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "Bookings grouped by theater fetched successfully", rows)
}

func (h *BookingHandler) MovieReport(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.bookings.MoviesWithTotalBookings(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "Movies with total bookings fetched successfully", rows)
}
