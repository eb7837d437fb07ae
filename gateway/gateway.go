// Package gateway abstracts the chat-completion endpoint behind a single
// Complete operation: bind a persona directive to the shared history,
// produce text. Capability round-trips happen inside the gateway and
// terminate before Complete returns; retries do not — failure policy
// belongs to the orchestrator.
package gateway

import (
	"context"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

// Request carries one completion call's inputs.
type Request struct {
	// Directive is the persona's behavioral instruction, sent as the
	// system content.
	Directive string

	// History is the gateway-visible view of the conversation log, in
	// order. Facilitator turns are never part of it.
	History []protocol.Turn

	// Task is an optional instruction appended after the history as a
	// final user message. Empty for plain persona turns.
	Task string

	// Capabilities offered to the model for this call. Empty disables
	// the capability loop entirely.
	Capabilities []protocol.Capability
}

// Gateway produces a textual response for a persona-bound completion
// request. Implementations perform no retries; errors wrap ErrUnavailable,
// ErrMalformed, or ErrCapabilityLoop so callers can branch with errors.Is.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}
