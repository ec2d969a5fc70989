package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig tunes the Redis response cache sitting in front of the
// public catalog browse endpoints.  Those responses are identical for
// every visitor, so they are keyed by route and query string only.
type CacheConfig struct {
	Enabled      bool          // disable to always hit the database
	TTL          time.Duration // lifetime of a cached response
	Prefix       string        // Redis key namespace
	MaxBodyBytes int           // responses larger than this are not cached
}

// LoadCacheConfig reads the cache settings from the environment, falling
// back to defaults tuned for a catalog that changes a few times a day.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		TTL:          parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

// getenv returns the value of key or def when unset/empty.  Shared by the
// optional-config loaders in this package; required values go through
// must() instead.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
