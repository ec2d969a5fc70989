package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"      // context with timeout bounds the credential store lookup
	"database/sql" // sql.ErrNoRows distinguishes a deleted user from a store failure
	"net/http"     // HTTP status codes for responses
	"time"         // timeout duration for the lookup

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/storefront-go/storefront/internal/auth"
	"github.com/storefront-go/storefront/internal/model"
)

// ContextUserKey is the echo context key under which the authenticated
// user record is stored for downstream handlers.
const ContextUserKey = "user"

// UserLoader resolves a user id extracted from a verified token into the
// full user record.  The credential store implements it.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticated returns an Echo middleware that validates the access token
// cookie and attaches the full user record to the request context.  The
// token is the sole source of identity: the user id is always re-derived
// from a verified signature, never read from the request.  A missing or
// invalid cookie, or a token whose user no longer exists, yields 401.
func Authenticated(tokens *auth.TokenService, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("accessToken")
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			uid, err := tokens.VerifyAccess(cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				if err == sql.ErrNoRows {
					// The token outlived its account; treat as unauthenticated.
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}

			c.Set(ContextUserKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Authenticated.  ok is false
// when the middleware did not run on this route.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ContextUserKey).(model.User)
	return u, ok
}
