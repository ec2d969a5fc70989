package config

import "time"

// RateLimitConfig tunes the token bucket guarding the account flow
// endpoints.  The defaults allow a burst of 60 requests per client with
// one token refilled per second, which is generous for a human and tight
// for a credential-stuffing script.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size (maximum burst)
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // how often tokens are added
	TTL            time.Duration // idle lifetime of a bucket in Redis
	Prefix         string        // Redis key namespace
}

// LoadRateLimitConfig reads the limiter settings from the environment and
// clamps them into a sane range, so a typo in an env var degrades to a
// working limiter instead of one that blocks everything.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Capacity:       atoi(getenv("RATE_LIMIT_CAPACITY", "60")),
		RefillTokens:   atoi(getenv("RATE_LIMIT_REFILL_TOKENS", "1")),
		RefillInterval: parseDur(getenv("RATE_LIMIT_REFILL_INTERVAL", "1s")),
		TTL:            parseDur(getenv("RATE_LIMIT_TTL", "10m")),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// A bucket must outlive several refill intervals or idle clients lose
	// their refill credit.
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
