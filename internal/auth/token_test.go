package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/auth"
)

// memRegistry is an in-memory stand-in for the Redis session registry.
// TTLs are recorded but not enforced; expiry behavior is covered by the
// repository tests against miniredis.
type memRegistry struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemRegistry() *memRegistry {
	return &memRegistry{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRegistry) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memRegistry) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", auth.ErrNotFound
	}
	return v, nil
}

func (m *memRegistry) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestService(reg auth.Registry) *auth.TokenService {
	return &auth.TokenService{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		ResetSecret:   []byte("reset-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
		Registry:      reg,
	}
}

func TestIssuePairAndVerify(t *testing.T) {
	svc := newTestService(newMemRegistry())

	access, refresh, err := svc.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	uid, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)

	uid, err = svc.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestTokenClassesDoNotCross(t *testing.T) {
	// Each class is signed with its own secret: a refresh token must not
	// verify as an access token, nor a reset token as either.
	svc := newTestService(newMemRegistry())
	access, refresh, err := svc.IssuePair(7)
	require.NoError(t, err)
	reset, err := svc.IssueReset(7)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	_, err = svc.VerifyAccess(reset)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	_, err = svc.VerifyReset(access)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestVerifyAccessExpiry(t *testing.T) {
	svc := newTestService(newMemRegistry())

	// A token one second into its lifetime verifies.
	svc.AccessTTL = time.Minute
	access, _, err := svc.IssuePair(1)
	require.NoError(t, err)
	_, err = svc.VerifyAccess(access)
	assert.NoError(t, err)

	// A token whose expiry is already in the past does not.
	svc.AccessTTL = -time.Second
	expired, _, err := svc.IssuePair(1)
	require.NoError(t, err)
	_, err = svc.VerifyAccess(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestRotateAccess(t *testing.T) {
	reg := newMemRegistry()
	svc := newTestService(reg)
	ctx := context.Background()

	_, refresh, err := svc.IssuePair(9)
	require.NoError(t, err)
	require.NoError(t, svc.PersistRefresh(ctx, 9, refresh))

	access, uid, err := svc.RotateAccess(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), uid)
	got, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got)

	// The refresh token itself is not rotated: a second exchange with the
	// same token still succeeds.
	_, _, err = svc.RotateAccess(ctx, refresh)
	assert.NoError(t, err)
}

func TestRotateAccessRejectsUnpersistedToken(t *testing.T) {
	svc := newTestService(newMemRegistry())

	_, refresh, err := svc.IssuePair(9)
	require.NoError(t, err)

	// Signed and unexpired, but absent from the registry.
	_, _, err = svc.RotateAccess(context.Background(), refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestNewPairInvalidatesPriorRefreshToken(t *testing.T) {
	reg := newMemRegistry()
	svc := newTestService(reg)
	ctx := context.Background()

	_, first, err := svc.IssuePair(5)
	require.NoError(t, err)
	require.NoError(t, svc.PersistRefresh(ctx, 5, first))

	// Second login: the registry write overwrites the first entry.
	_, second, err := svc.IssuePair(5)
	require.NoError(t, err)
	require.NoError(t, svc.PersistRefresh(ctx, 5, second))

	_, _, err = svc.RotateAccess(ctx, first)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	_, _, err = svc.RotateAccess(ctx, second)
	assert.NoError(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	reg := newMemRegistry()
	svc := newTestService(reg)
	ctx := context.Background()

	_, refresh, err := svc.IssuePair(3)
	require.NoError(t, err)
	require.NoError(t, svc.PersistRefresh(ctx, 3, refresh))

	require.NoError(t, svc.Revoke(ctx, 3))
	require.NoError(t, svc.Revoke(ctx, 3)) // absent key is not an error

	_, _, err = svc.RotateAccess(ctx, refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(newMemRegistry())
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.VerifyAccess(tok)
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken, "token %q", tok)
	}
}
