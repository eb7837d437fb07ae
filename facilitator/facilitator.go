// Package facilitator decides which persona speaks next. The model-backed
// implementation delegates the choice to one gateway call constrained to
// answer with exactly one roster id; the round-robin implementation
// rotates deterministically in roster order.
package facilitator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
	"github.com/tailored-agentic-units/roundtable/gateway"
)

// Facilitator chooses the next speaker from the roster given the user's
// latest message and a view of the conversation log. The returned id is
// always an element of roster; anything else is an error.
type Facilitator interface {
	Decide(ctx context.Context, userMessage string, logView []protocol.Turn, roster []string) (string, error)
}

// Model routes via a single gateway call. The directive instructs the
// model to reply with one roster id and nothing else, and to balance
// speaking turns across the roster; fairness is enforced only by that
// wording, never algorithmically.
type Model struct {
	gw gateway.Gateway

	// directive overrides the built-in routing instruction when set.
	// It should reference the roster ids itself; the default is built
	// per call from the roster argument.
	directive string
}

// ModelOption configures a Model facilitator.
type ModelOption func(*Model)

// WithDirective replaces the default routing directive.
func WithDirective(directive string) ModelOption {
	return func(m *Model) { m.directive = directive }
}

// NewModel creates a model-backed facilitator on the given gateway.
func NewModel(gw gateway.Gateway, opts ...ModelOption) *Model {
	m := &Model{gw: gw}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Decide implements Facilitator. The gateway's output is accepted only on
// an exact match (after trimming surrounding whitespace) against a roster
// id; no substring or fuzzy matching. An unmatched output fails with
// ErrNotInRoster carrying the offending string for diagnosis.
func (m *Model) Decide(ctx context.Context, userMessage string, logView []protocol.Turn, roster []string) (string, error) {
	if len(roster) == 0 {
		return "", ErrEmptyRoster
	}

	directive := m.directive
	if directive == "" {
		directive = fmt.Sprintf(
			"You are the facilitator of a group discussion. Based on the user's question and the conversation so far, reply with the name of the agent who should speak next. Reply with exactly one of: %s. Output only the name, nothing else. Balance speaking turns evenly across the agents.",
			strings.Join(roster, " / "),
		)
	}

	raw, err := m.gw.Complete(ctx, gateway.Request{
		Directive: directive,
		History:   logView,
		Task:      "User question: " + userMessage,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGatewayFailed, err)
	}

	chosen := strings.TrimSpace(raw)
	for _, id := range roster {
		if chosen == id {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrNotInRoster, chosen)
}
