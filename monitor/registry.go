package monitor

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/msusur/healthmonitoring/health"
)

// EndpointConfig describes one endpoint to monitor.
type EndpointConfig struct {
	// ID is optional; a random id is generated when empty.
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Group   string `mapstructure:"group"`
	Monitor string `mapstructure:"monitor"`
	Address string `mapstructure:"address"`
}

// Validate checks that the required fields are set.
func (c EndpointConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Monitor) == "" {
		missing = append(missing, "monitor")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEndpoint, strings.Join(missing, ", "))
	}
	if c.ID != "" {
		if _, err := uuid.Parse(c.ID); err != nil {
			return fmt.Errorf("%w: id %q: %v", ErrInvalidEndpoint, c.ID, err)
		}
	}
	return nil
}

// ProbeLookup resolves a monitor type to a probe.
type ProbeLookup interface {
	Lookup(name string) (health.Probe, bool)
}

// Registry holds the monitored endpoints. It is safe for concurrent use.
type Registry struct {
	probes ProbeLookup

	mu        sync.RWMutex
	endpoints map[uuid.UUID]*health.Endpoint
}

// NewRegistry creates an empty registry resolving probes through probes.
func NewRegistry(probes ProbeLookup) *Registry {
	return &Registry{
		probes:    probes,
		endpoints: make(map[uuid.UUID]*health.Endpoint),
	}
}

// Add creates and registers an endpoint.
func (r *Registry) Add(cfg EndpointConfig) (*health.Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	probe, ok := r.probes.Lookup(cfg.Monitor)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonitor, cfg.Monitor)
	}

	id := uuid.New()
	if cfg.ID != "" {
		id = uuid.MustParse(cfg.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEndpoint, id)
	}

	ep := health.NewEndpoint(id, probe, cfg.Address, cfg.Name, cfg.Group)
	r.endpoints[id] = ep
	return ep, nil
}

// Get returns the endpoint with id.
func (r *Registry) Get(id uuid.UUID) (*health.Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ep, nil
}

// Update changes the group and name of the endpoint with id.
func (r *Registry) Update(id uuid.UUID, group, name string) (*health.Endpoint, error) {
	ep, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return ep.Update(group, name), nil
}

// Remove unregisters and disposes the endpoint with id. A check in flight
// for it completes but its result is not committed.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	ep, ok := r.endpoints[id]
	delete(r.endpoints, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ep.Dispose()
	return nil
}

// Endpoints returns the registered endpoints ordered by group, name and id.
func (r *Registry) Endpoints() []*health.Endpoint {
	r.mu.RLock()
	eps := slices.Collect(maps.Values(r.endpoints))
	r.mu.RUnlock()

	slices.SortFunc(eps, func(a, b *health.Endpoint) int {
		return cmp.Or(
			cmp.Compare(a.Group(), b.Group()),
			cmp.Compare(a.Name(), b.Name()),
			cmp.Compare(a.ID().String(), b.ID().String()),
		)
	})
	return eps
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

var _ health.Source = (*Registry)(nil)
