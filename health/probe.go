package health

import (
	"context"
	"fmt"
)

// ProbeStatus is the coarse outcome reported by a probe before classification.
//
// It is a different type from Status: the sampler may turn a
// healthy probe result into StatusUnhealthy, so raw values are never stored.
type ProbeStatus string

const (
	ProbeHealthy   ProbeStatus = "healthy"
	ProbeFaulty    ProbeStatus = "faulty"
	ProbeOffline   ProbeStatus = "offline"
	ProbeNotExists ProbeStatus = "notExists"
	ProbeTimedOut  ProbeStatus = "timedOut"
)

var probeStatusTable = map[ProbeStatus]Status{
	ProbeHealthy:   StatusHealthy,
	ProbeFaulty:    StatusFaulty,
	ProbeOffline:   StatusOffline,
	ProbeNotExists: StatusNotExists,
	ProbeTimedOut:  StatusTimedOut,
}

// Status maps the raw probe status onto the endpoint status taxonomy.
func (p ProbeStatus) Status() (Status, error) {
	if s, ok := probeStatusTable[p]; ok {
		return s, nil
	}
	return StatusFaulty, fmt.Errorf("%w %q", ErrUnknownProbeStatus, string(p))
}

// ProbeResult is the unclassified outcome of one probe call.
type ProbeResult struct {
	Status  ProbeStatus
	Details map[string]string
}

// Probe performs the actual reachability check for one kind of endpoint.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: CheckHealth must return promptly once ctx is cancelled.
// - Errors: any returned error is treated as a fault by the sampler.
type Probe interface {
	// Name returns the monitor type served by this probe (e.g. "http").
	Name() string

	// CheckHealth checks the endpoint at address.
	CheckHealth(ctx context.Context, address string) (ProbeResult, error)
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc struct {
	name string
	fn   func(context.Context, string) (ProbeResult, error)
}

// NewProbeFunc creates a new ProbeFunc.
func NewProbeFunc(name string, fn func(ctx context.Context, address string) (ProbeResult, error)) *ProbeFunc {
	return &ProbeFunc{name: name, fn: fn}
}

// Name returns the monitor type.
func (f *ProbeFunc) Name() string {
	return f.name
}

// CheckHealth calls the wrapped function.
func (f *ProbeFunc) CheckHealth(ctx context.Context, address string) (ProbeResult, error) {
	return f.fn(ctx, address)
}

var _ Probe = (*ProbeFunc)(nil)
