package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/capitolcinema/booking-backend/internal/apperr"
)

const requestTimeout = 5 * time.Second

// reqCtx derives a bounded context for the service call behind a handler.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail renders a service error with the status its kind maps to.
// Internal errors are not echoed back to the client.
func fail(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if apperr.KindOf(err) == apperr.Internal {
		msg = "internal error"
		c.Logger().Error(err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}
