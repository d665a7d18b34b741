package subsystem

import (
	"fmt"
	"sort"
	"sync"

	"github.com/safedep/authgate/core/events"
)

// Factory creates a Client for one backend.
type Factory func(opts Options) (Client, error)

// Registry manages the available backends.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new backend registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a backend factory to the registry.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates a client for the named backend and subscribes it to types.
// A failure here means there is no event stream to protect.
func (r *Registry) Open(name string, opts Options, types []events.EventType) (Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown subsystem backend: %s", name)
	}

	client, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}

	if err := client.Subscribe(types); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to subscribe %s client: %w", name, err)
	}

	return client, nil
}
