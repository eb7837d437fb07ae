// Package capability provides the global registry of side capabilities
// personas may invoke through the model gateway: named, JSON-argument
// operations whose results feed back into the next gateway turn.
package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

// Handler is the function signature for capability implementations.
// Handlers receive the request context and JSON-encoded arguments from
// the model.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the capability execution output that feeds back into the next
// gateway turn. IsError signals to the model that the invocation failed.
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	capability protocol.Capability
	handler    Handler
}

type registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

var register = &registry{
	entries: make(map[string]entry),
}

// Register adds a new capability to the global registry.
// Returns ErrAlreadyExists if a capability with the same name is already
// registered; use Replace to update an existing handler.
// Thread-safe for concurrent registration.
func Register(capability protocol.Capability, handler Handler) error {
	if capability.Name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.entries[capability.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, capability.Name)
	}

	register.entries[capability.Name] = entry{capability: capability, handler: handler}
	return nil
}

// Replace updates an existing capability's definition and handler.
// Returns ErrNotFound if no capability with the given name is registered.
func Replace(capability protocol.Capability, handler Handler) error {
	if capability.Name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.entries[capability.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, capability.Name)
	}

	register.entries[capability.Name] = entry{capability: capability, handler: handler}
	return nil
}

// Get retrieves a handler by capability name.
// Returns the handler and true if found, nil and false otherwise.
func Get(name string) (Handler, bool) {
	register.mu.RLock()
	defer register.mu.RUnlock()

	e, exists := register.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// Lookup returns the definitions for the named capabilities, in the order
// given. Unknown names are skipped; a persona configured with a capability
// that was never registered simply does not offer it to the gateway.
func Lookup(names ...string) []protocol.Capability {
	register.mu.RLock()
	defer register.mu.RUnlock()

	caps := make([]protocol.Capability, 0, len(names))
	for _, name := range names {
		if e, exists := register.entries[name]; exists {
			caps = append(caps, e.capability)
		}
	}
	return caps
}

// List returns the definitions of all registered capabilities.
func List() []protocol.Capability {
	register.mu.RLock()
	defer register.mu.RUnlock()

	caps := make([]protocol.Capability, 0, len(register.entries))
	for _, e := range register.entries {
		caps = append(caps, e.capability)
	}
	return caps
}

// Execute dispatches a capability call to the registered handler by name.
// Returns ErrNotFound if the capability is not registered.
// Handler errors are wrapped with the capability name for context.
func Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	register.mu.RLock()
	e, exists := register.entries[name]
	register.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("capability %s execution failed: %w", name, err)
	}

	return result, nil
}
