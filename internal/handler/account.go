package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/capitolcinema/booking-backend/internal/middleware"
	"github.com/capitolcinema/booking-backend/internal/service"
)

// AccountHandler serves the profile and billing-address endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
	Email    *service.EmailChangeService
}

func NewAccountHandler(accounts *service.AccountService, email *service.EmailChangeService) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Email: email}
}

type emailChangeReq struct {
	Password string `json:"password"`
	NewEmail string `json:"new_email"`
}
type emailConfirmReq struct {
	OldEmailKey int `json:"old_email_key"`
	NewEmailKey int `json:"new_email_key"`
}

// UserInfo returns the caller's profile with the stored addresses.
func (h *AccountHandler) UserInfo(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Accounts.Profile(ctx, middleware.Token(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// AddAddress stores a billing address for the caller.
func (h *AccountHandler) AddAddress(c echo.Context) error {
	var req service.AddressInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Accounts.AddAddress(ctx, middleware.Token(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// DeleteAddress removes one of the caller's addresses.
func (h *AccountHandler) DeleteAddress(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.DeleteAddress(ctx, middleware.Token(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "address deleted"})
}

// RequestEmailChange opens a pending email change and mails one key to
// the old address and one to the new address.
func (h *AccountHandler) RequestEmailChange(c echo.Context) error {
	var req emailChangeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Email.Request(ctx, middleware.Token(c), req.Password, req.NewEmail); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "confirmation keys were sent to the old and the new address",
	})
}

// ConfirmEmailChange applies a pending email change when both keys match.
func (h *AccountHandler) ConfirmEmailChange(c echo.Context) error {
	var req emailConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Email.Confirm(ctx, middleware.Token(c), req.OldEmailKey, req.NewEmailKey); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email address changed"})
}
