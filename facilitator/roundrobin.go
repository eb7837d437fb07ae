package facilitator

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

// RoundRobin rotates through the roster in registration order, ignoring
// the conversation entirely. It backs the non-facilitated variant and is
// the operator's manual fallback when model routing keeps failing; it is
// never engaged automatically.
type RoundRobin struct {
	mu   sync.Mutex
	next int
}

// NewRoundRobin creates a rotation starting at the first roster entry.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Decide implements Facilitator.
func (r *RoundRobin) Decide(_ context.Context, _ string, _ []protocol.Turn, roster []string) (string, error) {
	if len(roster) == 0 {
		return "", ErrEmptyRoster
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := roster[r.next%len(roster)]
	r.next++
	return id, nil
}
