package config

import "time"

// RateLimitConfig drives the Redis token-bucket limiter. Buckets are keyed
// per client IP, user and route, so one member hammering an endpoint cannot
// starve the rest of the club.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size: requests allowed in a burst
	RefillTokens   int           // tokens added per refill interval
	RefillInterval time.Duration
	TTL            time.Duration // how long an idle bucket survives in Redis
	Prefix         string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables and clamps
// nonsense values to something workable.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
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
	// A bucket must outlive several refill cycles or idle clients get a
	// fresh bucket (and a free burst) on every visit.
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
