package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sampler produces a classified health snapshot for an endpoint.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: CheckHealth fails only when ctx is cancelled by the caller; every
//   other condition is reported as a status in the returned snapshot.
type Sampler interface {
	CheckHealth(ctx context.Context, endpoint *Endpoint) (*EndpointHealth, error)
}

// Endpoint is a monitored target.
//
// The address and probe are fixed at construction. Name, group, health and
// the disposed flag are guarded by a single lock so that committing a check
// result and disposing the endpoint never interleave.
type Endpoint struct {
	id      uuid.UUID
	address string
	probe   Probe
	now     func() time.Time

	mu           sync.RWMutex
	name         string
	group        string
	health       *EndpointHealth
	disposed     bool
	lastModified time.Time
}

// NewEndpoint creates an endpoint that is checked with probe.
func NewEndpoint(id uuid.UUID, probe Probe, address, name, group string) *Endpoint {
	e := &Endpoint{
		id:      id,
		address: address,
		probe:   probe,
		now:     time.Now,
		name:    name,
		group:   group,
	}
	e.touchLocked()
	return e
}

// ID returns the endpoint identifier.
func (e *Endpoint) ID() uuid.UUID {
	return e.id
}

// Address returns the probe-specific address of the endpoint.
func (e *Endpoint) Address() string {
	return e.address
}

// Probe returns the probe used to check this endpoint.
func (e *Endpoint) Probe() Probe {
	return e.probe
}

// MonitorType returns the name of the probe.
func (e *Endpoint) MonitorType() string {
	if e.probe == nil {
		return ""
	}
	return e.probe.Name()
}

// Name returns the display name.
func (e *Endpoint) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

// Group returns the group the endpoint belongs to.
func (e *Endpoint) Group() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.group
}

// Health returns the most recently committed snapshot, or nil before the
// first commit and after disposal.
func (e *Endpoint) Health() *EndpointHealth {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.health
}

// IsDisposed reports whether Dispose has been called.
func (e *Endpoint) IsDisposed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.disposed
}

// LastModifiedTime returns the time of the last mutation.
func (e *Endpoint) LastModifiedTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastModified
}

// Update replaces the endpoint metadata and returns the endpoint.
func (e *Endpoint) Update(group, name string) *Endpoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.group = group
	e.name = name
	e.touchLocked()
	return e
}

// CheckHealth samples the endpoint and commits the result unless the
// endpoint was disposed while the check was in flight, in which case the
// result is dropped. The sampler still records it in its stats sink.
func (e *Endpoint) CheckHealth(ctx context.Context, sampler Sampler) error {
	h, err := sampler.CheckHealth(ctx, e)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return nil
	}
	e.health = h
	e.touchLocked()
	return nil
}

// Dispose marks the endpoint as disposed and clears its health. It is
// idempotent and terminal.
func (e *Endpoint) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.disposed = true
	e.health = nil
	e.touchLocked()
}

// String returns "group/name (monitorType: address)".
func (e *Endpoint) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fmt.Sprintf("%s/%s (%s: %s)", e.group, e.name, e.MonitorType(), e.address)
}

// touchLocked refreshes lastModified. Consecutive mutations always observe a
// strictly later time, even when the clock has not advanced.
func (e *Endpoint) touchLocked() {
	now := e.now().UTC()
	if !now.After(e.lastModified) {
		now = e.lastModified.Add(time.Nanosecond)
	}
	e.lastModified = now
}
