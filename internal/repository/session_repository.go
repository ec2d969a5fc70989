package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/auth"
)

// SessionRepo is the Redis-backed session registry.  It stores one value
// per key with expiry; Redis guarantees per-key atomicity for SET, GET and
// DEL, which is the only serialization this design relies on.  A race
// between logout and an in-flight refresh for the same user resolves by
// last write wins on the key.
type SessionRepo struct{ RDB *redis.Client }

func NewSessionRepo(rdb *redis.Client) *SessionRepo { return &SessionRepo{RDB: rdb} }

// Set stores value under key, replacing any prior value and resetting the
// expiry to ttl.
func (r *SessionRepo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.RDB.Set(ctx, key, value, ttl).Err()
}

// Get returns the value stored under key, or auth.ErrNotFound when the key
// is absent or already expired.
func (r *SessionRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.RDB.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Delete removes key.  Deleting an absent key is not an error.
func (r *SessionRepo) Delete(ctx context.Context, key string) error {
	return r.RDB.Del(ctx, key).Err()
}
