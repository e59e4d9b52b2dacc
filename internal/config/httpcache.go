package config

import "time"

// HTTPCacheConfig controls the Redis response cache applied to the
// public browse routes (movie list, categories, room list). It is
// independent of the in-process reference-data cache: this one caches
// rendered HTTP responses, keyed by route and query.
type HTTPCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadHTTPCacheConfig reads the cache settings from the environment.
func LoadHTTPCacheConfig() HTTPCacheConfig {
	return HTTPCacheConfig{
		Enabled:      envBool("HTTP_CACHE_ENABLED", true),
		TTL:          envDur("HTTP_CACHE_TTL", 30*time.Second),
		Prefix:       envStr("HTTP_CACHE_PREFIX", "respcache"),
		MaxBodyBytes: envInt("HTTP_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// RateLimitConfig controls the Redis token-bucket limiter.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads limiter settings from the environment and
// clamps them to sane minimums.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	return cfg
}
