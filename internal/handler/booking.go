package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/capitolcinema/booking-backend/internal/middleware"
	"github.com/capitolcinema/booking-backend/internal/service"
)

// BookingHandler serves showings, seat availability and orders.
type BookingHandler struct {
	Booking *service.BookingService
}

func NewBookingHandler(booking *service.BookingService) *BookingHandler {
	return &BookingHandler{Booking: booking}
}

// Showings lists upcoming showings. An optional ?movie_id= filters by movie.
func (h *BookingHandler) Showings(c echo.Context) error {
	var movieID uint64
	if raw := c.QueryParam("movie_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
		}
		movieID = id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Booking.ListShowings(ctx, movieID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Availability returns the seat map of one showing with occupancy.
func (h *BookingHandler) Availability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	av, err := h.Booking.GetAvailability(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, av)
}

// CreateShowing schedules a showing. Admin only.
func (h *BookingHandler) CreateShowing(c echo.Context) error {
	var req service.CreateShowingInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Booking.CreateShowing(ctx, middleware.Token(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// CreateOrder books seats for the caller after confirming the payment.
func (h *BookingHandler) CreateOrder(c echo.Context) error {
	var req service.OrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	receipt, err := h.Booking.PlaceOrder(ctx, middleware.Token(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, receipt)
}
