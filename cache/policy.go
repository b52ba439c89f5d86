package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Policy bounds how long responses are cached.
type Policy struct {
	// DefaultTTL applies when the response carries no max-age. Zero
	// disables caching.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// MaxTTL clamps every TTL. Zero means no clamp.
	MaxTTL time.Duration `mapstructure:"max_ttl"`
}

// DefaultPolicy caches for 2 seconds and never longer than 30 seconds.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 2 * time.Second,
		MaxTTL:     30 * time.Second,
	}
}

// NoCachePolicy disables caching.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache reports whether the policy caches at all.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns override, or DefaultTTL when override is not
// positive, clamped to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}

// TTLFor derives the TTL for a response from its Cache-Control header.
// "no-store" and "no-cache" disable caching; max-age overrides DefaultTTL.
func (p Policy) TTLFor(h http.Header) time.Duration {
	var override time.Duration
	for _, directive := range strings.Split(h.Get("Cache-Control"), ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		switch {
		case directive == "no-store", directive == "no-cache":
			return 0
		case strings.HasPrefix(directive, "max-age="):
			secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err != nil || secs <= 0 {
				return 0
			}
			override = time.Duration(secs) * time.Second
		}
	}
	return p.EffectiveTTL(override)
}
