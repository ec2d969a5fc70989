package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/middleware"
	"github.com/storefront-go/storefront/internal/model"
)

// currentUser pulls the user record attached by the authentication
// middleware out of the request context.
func currentUser(c echo.Context) (model.User, bool) {
	return middleware.CurrentUser(c)
}

// pathID parses the :id route parameter as an unsigned integer.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// storeCtx bounds a store call to the five-second timeout used across
// all handlers.
func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
