package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenContextKey is where ExtractToken stores the caller's auth token.
const TokenContextKey = "auth_token"

// ExtractToken pulls the opaque token out of the Authorization header
// and stores it in the request context. Both "Bearer <token>" and a
// bare token value are accepted. Validation happens in the services;
// this middleware never rejects a request on its own, so public and
// protected routes can share it.
func ExtractToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimSpace(c.Request().Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[len("bearer "):])
		}
		c.Set(TokenContextKey, raw)
		return next(c)
	}
}

// Token returns the token stored by ExtractToken, or "".
func Token(c echo.Context) string {
	if v, ok := c.Get(TokenContextKey).(string); ok {
		return v
	}
	return ""
}
