package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrInvalidTimeout is returned when a race is started without a positive timeout.
	ErrInvalidTimeout = errors.New("resilience: timeout must be positive")

	// ErrPanic is returned when a raced operation panics.
	ErrPanic = errors.New("resilience: operation panicked")
)
