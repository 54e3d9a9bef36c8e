package probe

import (
	"errors"
	"fmt"
	"sync"

	"github.com/velotools/velocheck/internal/schema"
)

var (
	// ErrDuplicateEndpoint is returned when a name is registered twice.
	ErrDuplicateEndpoint = errors.New("endpoint already registered")

	// ErrUnknownEndpoint is returned when a lookup names no registered
	// endpoint.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidEndpoint is returned when an endpoint declaration is
	// incomplete.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// Registry holds the endpoints under test in registration order. Register
// everything during setup, Freeze once, then read from any goroutine.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Endpoint
	frozen bool
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Endpoint),
	}
}

// Register adds an endpoint under its name. Names are unique for the
// lifetime of the registry; registering after Freeze is a configuration
// defect.
func (r *Registry) Register(ep Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, ep.Name)
	}

	if ep.Name == "" {
		return fmt.Errorf("%w: endpoint has no name", ErrInvalidEndpoint)
	}

	if ep.Method == "" {
		return fmt.Errorf("%w: endpoint %q has no method", ErrInvalidEndpoint, ep.Name)
	}

	if ep.Expect == nil {
		return fmt.Errorf("%w: endpoint %q has no schema", ErrInvalidEndpoint, ep.Name)
	}

	if _, exists := r.byName[ep.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, ep.Name)
	}

	r.byName[ep.Name] = ep
	r.order = append(r.order, ep.Name)

	return nil
}

// Freeze ends registration and checks every endpoint schema for
// well-formedness. Any defect aborts the freeze so broken schemas surface at
// setup, not in the middle of a run. Freeze is idempotent.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil
	}

	for _, name := range r.order {
		if err := schema.Check(r.byName[name].Expect); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
	}

	r.frozen = true

	return nil
}

// Get returns the endpoint registered under name.
func (r *Registry) Get(name string) (Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.byName[name]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}

	return ep, nil
}

// Names lists registered endpoint names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Endpoints lists registered endpoints in registration order.
func (r *Registry) Endpoints() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoints := make([]Endpoint, 0, len(r.order))
	for _, name := range r.order {
		endpoints = append(endpoints, r.byName[name])
	}

	return endpoints
}
