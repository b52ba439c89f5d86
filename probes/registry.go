package probes

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/resilience"
	"github.com/msusur/healthmonitoring/secret"
)

// Config configures the built-in probes. Limits apply per monitor type.
type Config struct {
	UserAgent string `mapstructure:"user_agent"`

	// MaxConcurrent bounds concurrent calls per probe; 0 disables the bound.
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	MaxWait       time.Duration `mapstructure:"max_wait"`

	// RatePerSecond throttles calls per probe; 0 disables throttling.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// Registry maps monitor type names to probes. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	probes map[string]health.Probe
}

// NewRegistry creates a registry holding probes.
func NewRegistry(probes ...health.Probe) (*Registry, error) {
	r := &Registry{probes: make(map[string]health.Probe, len(probes))}
	for _, p := range probes {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewDefaultRegistry creates a registry with the http, tcp and dns probes,
// each wrapped according to cfg and resolving addresses through resolver.
func NewDefaultRegistry(cfg Config, resolver *secret.Resolver) (*Registry, error) {
	builtins := []health.Probe{
		NewHTTPProbe(nil).WithUserAgent(cfg.UserAgent),
		NewTCPProbe(),
		NewDNSProbe(nil),
	}

	wrapped := make([]health.Probe, 0, len(builtins))
	for _, p := range builtins {
		if cfg.MaxConcurrent > 0 {
			p = Limit(p, resilience.NewBulkhead(resilience.BulkheadConfig{
				MaxConcurrent: cfg.MaxConcurrent,
				MaxWait:       cfg.MaxWait,
			}))
		}
		if cfg.RatePerSecond > 0 {
			p = Throttle(p, resilience.NewRateLimiter(resilience.RateLimiterConfig{
				Rate:        cfg.RatePerSecond,
				Burst:       cfg.Burst,
				WaitOnLimit: true,
				MaxWait:     cfg.MaxWait,
			}))
		}
		wrapped = append(wrapped, WithSecrets(p, resolver))
	}
	return NewRegistry(wrapped...)
}

// Register adds p under p.Name().
func (r *Registry) Register(p health.Probe) error {
	if p == nil {
		return health.ErrNilProbe
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.probes[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProbe, name)
	}
	r.probes[name] = p
	return nil
}

// Lookup returns the probe registered under name.
func (r *Registry) Lookup(name string) (health.Probe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.probes[name]
	return p, ok
}

// Names returns the registered monitor types, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.probes))
}
