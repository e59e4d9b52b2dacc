package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/capitolcinema/booking-backend/internal/middleware"
	"github.com/capitolcinema/booking-backend/internal/service"
)

// AuthHandler exposes the credential lifecycle endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type deactivateReq struct {
	Password string `json:"password"`
}
type updateUserReq struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// Register creates a pending account and mails the activation key.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Auth.Register(ctx, req.Password, req.Email, req.Name); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "account created, the activation key was sent by mail",
	})
}

// Activate flips a pending account to active using the mailed key.
func (h *AuthHandler) Activate(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Activate(ctx, c.Param("key")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account activated"})
}

// Login verifies credentials and returns a fresh auth token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	token, name, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "name": name})
}

// Deactivate disables the caller's account. Password is required again
// so a leaked token alone cannot kill the account.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	var req deactivateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Deactivate(ctx, middleware.Token(c), req.Password); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}

// UpdateUser patches email, name and/or password of the caller.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.UpdateProfile(ctx, middleware.Token(c), req.Email, req.Name, req.Password); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account updated"})
}
