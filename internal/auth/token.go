package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registry is the key-value store holding the single current refresh
// token per user.  Implementations must provide atomic per-key set, get
// and delete with expiry; Get returns ErrNotFound when the key is absent.
type Registry interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Claims is the payload carried by every token class: the user identity
// plus the registered issued-at and expiry claims.  Validity of access and
// reset tokens is determined purely by signature and expiry; refresh
// tokens additionally require an exact match against the registry.
type Claims struct {
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the three token classes.  Each class is
// signed with its own secret so that compromise of one secret cannot forge
// the others.
//
// A TokenService is configured once at startup and is safe for concurrent
// use; the only mutable state it touches is the registry entry per user.
type TokenService struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ResetSecret   []byte

	AccessTTL  time.Duration // lifetime of access tokens (15m in production)
	RefreshTTL time.Duration // lifetime of refresh tokens (7d in production)
	ResetTTL   time.Duration // lifetime of password-reset tokens (15m)

	Registry Registry
}

// registryKey builds the per-user session registry key.
func registryKey(userID uint64) string { return fmt.Sprintf("refresh:%d", userID) }

// sign builds an HS256 token for userID expiring after ttl.
func sign(secret []byte, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parse verifies signature and expiry against the given secret and returns
// the embedded user id.  Any failure collapses to ErrInvalidOrExpiredToken;
// callers never learn why a token was rejected.
func parse(secret []byte, token string) (uint64, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidOrExpiredToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid || claims.UserID == 0 {
		return 0, ErrInvalidOrExpiredToken
	}
	return claims.UserID, nil
}

// IssuePair mints a fresh access/refresh token pair for userID.  The pair
// is not yet valid for refresh until PersistRefresh stores it.
func (s *TokenService) IssuePair(userID uint64) (access, refresh string, err error) {
	if access, err = sign(s.AccessSecret, userID, s.AccessTTL); err != nil {
		return "", "", err
	}
	if refresh, err = sign(s.RefreshSecret, userID, s.RefreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// PersistRefresh stores refresh as the single current refresh token for
// userID, with a TTL equal to the token's own lifetime.  The write
// overwrites any prior entry, which immediately invalidates every refresh
// token previously issued to that user.
func (s *TokenService) PersistRefresh(ctx context.Context, userID uint64, refresh string) error {
	return s.Registry.Set(ctx, registryKey(userID), refresh, s.RefreshTTL)
}

// RotateAccess exchanges a presented refresh token for a fresh access
// token.  The refresh token itself is not rotated.  The presented value
// must verify under the refresh secret and must byte-for-byte equal the
// registry entry for its user; otherwise ErrInvalidRefreshToken is
// returned.  Registry failures other than a missing key are passed through
// so handlers can report a server-side error instead of logging the
// caller out.
func (s *TokenService) RotateAccess(ctx context.Context, presented string) (access string, userID uint64, err error) {
	userID, err = parse(s.RefreshSecret, presented)
	if err != nil {
		return "", 0, ErrInvalidRefreshToken
	}
	stored, err := s.Registry.Get(ctx, registryKey(userID))
	if err != nil {
		if err == ErrNotFound {
			return "", 0, ErrInvalidRefreshToken
		}
		return "", 0, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return "", 0, ErrInvalidRefreshToken
	}
	access, err = sign(s.AccessSecret, userID, s.AccessTTL)
	if err != nil {
		return "", 0, err
	}
	return access, userID, nil
}

// Revoke deletes the registry entry for userID, ending the session.
// Deleting an absent key is not an error, so logout stays idempotent.
func (s *TokenService) Revoke(ctx context.Context, userID uint64) error {
	return s.Registry.Delete(ctx, registryKey(userID))
}

// VerifyAccess checks signature and expiry of an access token and returns
// the user id it was issued to.  No registry lookup happens here: access
// tokens are stateless on purpose, keeping the per-request check cheap.
func (s *TokenService) VerifyAccess(token string) (uint64, error) {
	return parse(s.AccessSecret, token)
}

// VerifyRefresh checks signature and expiry of a refresh token without
// consulting the registry.  Logout uses it to learn which user's session
// to revoke from a cookie it cannot otherwise trust.
func (s *TokenService) VerifyRefresh(token string) (uint64, error) {
	return parse(s.RefreshSecret, token)
}

// IssueReset mints a password-reset token.  Reset tokens are stateless and
// are not tracked in the registry, so one stays verifiable for its full
// TTL even after the password has been changed.
func (s *TokenService) IssueReset(userID uint64) (string, error) {
	return sign(s.ResetSecret, userID, s.ResetTTL)
}

// VerifyReset checks signature and expiry of a password-reset token.
func (s *TokenService) VerifyReset(token string) (uint64, error) {
	return parse(s.ResetSecret, token)
}
