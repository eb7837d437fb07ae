// Package conversation manages per-session conversation state: the
// append-only turn log and the session handle that owns it.
package conversation

import (
	"slices"
	"sync"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

// Log is an append-only ordered sequence of turns. Sequence numbers are
// assigned on append, strictly increasing and never reused within a
// session, including across Reset.
//
// The log has a single writer (its session's orchestrator run); reads are
// safe from any goroutine.
type Log struct {
	mu    sync.RWMutex
	turns []protocol.Turn
	next  int
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append assigns the next sequence number to the turn, appends it, and
// returns the sequenced turn. Appended turns are immutable.
func (l *Log) Append(turn protocol.Turn) protocol.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	turn.Sequence = l.next
	l.next++
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a defensive copy of the log.
func (l *Log) Turns() []protocol.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.turns)
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Reset removes all turns. Sequence numbering continues from where it
// left off, so sequences observed before a reset are never reused.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}
