package secret

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from its configuration block.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates a registry with the built-in "env" and "file"
// providers. The file provider reads its base directory from cfg["dir"].
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]ProviderFactory)}
	r.factories["env"] = func(map[string]any) (Provider, error) {
		return EnvProvider{}, nil
	}
	r.factories["file"] = func(cfg map[string]any) (Provider, error) {
		dir, _ := cfg["dir"].(string)
		if dir == "" {
			return nil, errors.New("secret: file provider requires dir")
		}
		return &FileProvider{Dir: dir}, nil
	}
	return r
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return errors.New("secret: invalid provider registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("secret: provider %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return factory(cfg)
}

// List returns registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Build creates a strict Resolver with one provider per entry of configs.
// The env provider is always available.
func (r *Registry) Build(configs map[string]map[string]any) (*Resolver, error) {
	resolver := NewResolver(true, EnvProvider{})
	for _, name := range slices.Sorted(maps.Keys(configs)) {
		p, err := r.Create(name, configs[name])
		if err != nil {
			_ = resolver.Close()
			return nil, err
		}
		resolver.Register(p)
	}
	return resolver, nil
}
