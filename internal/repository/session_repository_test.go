package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/auth"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *SessionRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSessionRepo(client)
}

func TestSessionRepoSetGetDelete(t *testing.T) {
	mr, repo := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "refresh:1", "tok-a", 7*24*time.Hour))

	v, err := repo.Get(ctx, "refresh:1")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", v)

	// The TTL rides along with the value.
	ttl := mr.TTL("refresh:1")
	assert.Equal(t, 7*24*time.Hour, ttl)

	require.NoError(t, repo.Delete(ctx, "refresh:1"))
	_, err = repo.Get(ctx, "refresh:1")
	assert.ErrorIs(t, err, auth.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, repo.Delete(ctx, "refresh:1"))
}

func TestSessionRepoOverwrite(t *testing.T) {
	_, repo := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "refresh:2", "old", time.Hour))
	require.NoError(t, repo.Set(ctx, "refresh:2", "new", time.Hour))

	v, err := repo.Get(ctx, "refresh:2")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSessionRepoExpiry(t *testing.T) {
	mr, repo := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "refresh:3", "tok", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "refresh:3")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepoMissingKey(t *testing.T) {
	_, repo := newTestRedis(t)
	_, err := repo.Get(context.Background(), "refresh:999")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}
