package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/storefront-go/storefront/internal/model"
)

// RequireRole returns a middleware that enforces the role attached by
// Authenticated, which must run earlier in the chain.  Admin passes every
// gate; seller and customer are incomparable, so a seller gate rejects a
// customer and vice versa.  Requests without an attached user (the gate
// running without Authenticated) are rejected outright.
func RequireRole(required model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !u.Role.Satisfies(required) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
