// Package auth implements the session and token lifecycle: issuing,
// verifying, rotating and revoking the signed credentials that back
// authenticated requests.
package auth

import "errors"

// Sentinel errors raised by the token service and consumed by handlers
// and middleware, which translate them into HTTP statuses.  Anything not
// in this set is treated as an upstream failure.
var (
	// ErrInvalidOrExpiredToken is returned when a stateless token (access
	// or password-reset) fails signature or expiry checks.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrInvalidRefreshToken is returned when a presented refresh token
	// fails verification or does not match the registry entry for its user.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrNotFound is returned by the session registry when no entry exists
	// for the requested key.
	ErrNotFound = errors.New("not found")
)
