package sampler

import (
	"fmt"
	"time"
)

// Settings holds the sampler timeouts.
type Settings struct {
	// ShortTimeout bounds checks of endpoints not currently in trouble.
	ShortTimeout time.Duration `mapstructure:"short_timeout"`

	// FailureTimeout bounds checks of endpoints whose last status was
	// faulty, unhealthy or timed out.
	FailureTimeout time.Duration `mapstructure:"failure_timeout"`

	// HealthyResponseTimeLimit is the latency above which a healthy probe
	// result is downgraded to unhealthy.
	HealthyResponseTimeLimit time.Duration `mapstructure:"healthy_response_time_limit"`
}

// Validate checks that every duration is positive and that the short
// timeout does not exceed the failure timeout.
func (s Settings) Validate() error {
	switch {
	case s.ShortTimeout <= 0:
		return fmt.Errorf("%w: short timeout must be positive, got %v", ErrInvalidSettings, s.ShortTimeout)
	case s.FailureTimeout <= 0:
		return fmt.Errorf("%w: failure timeout must be positive, got %v", ErrInvalidSettings, s.FailureTimeout)
	case s.HealthyResponseTimeLimit <= 0:
		return fmt.Errorf("%w: healthy response time limit must be positive, got %v", ErrInvalidSettings, s.HealthyResponseTimeLimit)
	case s.ShortTimeout > s.FailureTimeout:
		return fmt.Errorf("%w: short timeout %v exceeds failure timeout %v", ErrInvalidSettings, s.ShortTimeout, s.FailureTimeout)
	}
	return nil
}
