package persona

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the session's persona roster. Registration order is
// preserved and significant: IDs() is the roster offered to the
// facilitator and the rotation order for round-robin routing.
//
// The registry is populated during startup and sealed before the session
// loop starts; Lookup and IDs are side-effect-free afterwards.
// Thread-safe for concurrent readers.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	personas map[string]Persona
	sealed   bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		personas: make(map[string]Persona),
	}
}

// NewRegistryFromConfigs builds a sealed Registry from an ordered list of
// persona configurations. Each entry's value is captured at construction
// time; the registry never aliases the config slice.
func NewRegistryFromConfigs(configs []Config) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range configs {
		p := Persona{
			ID:           cfg.ID,
			Directive:    cfg.Directive,
			Capabilities: slices.Clone(cfg.Capabilities),
		}
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	r.Seal()
	return r, nil
}

// Register adds a persona to the roster in registration order.
// Fails on empty ids, duplicate ids, and sealed registries.
func (r *Registry) Register(p Persona) error {
	if p.ID == "" {
		return ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.personas[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}

	r.order = append(r.order, p.ID)
	r.personas[p.ID] = p
	return nil
}

// Seal freezes the registry. Further Register calls fail with ErrSealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Lookup returns the persona registered under id.
// Repeated lookups for the same id return equal values for the lifetime
// of the session.
func (r *Registry) Lookup(id string) (Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.personas[id]
	if !exists {
		return Persona{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return Persona{
		ID:           p.ID,
		Directive:    p.Directive,
		Capabilities: slices.Clone(p.Capabilities),
	}, nil
}

// IDs returns the roster in registration order. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the roster size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
