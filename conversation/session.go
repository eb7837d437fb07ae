package conversation

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session owns one conversation: the full turn log, the per-user-message
// speaker tracker, and the busy flag that enforces at most one in-flight
// round loop per session.
//
// Sessions are independent; concurrent sessions share no mutable state.
type Session struct {
	id  string
	log *Log

	// roundSpeakers records which personas have spoken since the last
	// user message, in speaking order. One facilitator scope mode routes
	// on this tracker instead of the full log.
	roundMu       sync.Mutex
	roundSpeakers []string

	busy atomic.Bool
}

// NewSession creates a Session with an empty log and a UUIDv7 identifier.
func NewSession() *Session {
	return &Session{
		id:  uuid.Must(uuid.NewV7()).String(),
		log: NewLog(),
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Log returns the session's full conversation log.
func (s *Session) Log() *Log {
	return s.log
}

// TryAcquire marks the session busy. It returns false if a round loop is
// already in flight; the caller must not proceed in that case.
func (s *Session) TryAcquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

// Release clears the busy flag set by TryAcquire.
func (s *Session) Release() {
	s.busy.Store(false)
}

// BeginRound clears the speaker tracker. Called once per user message,
// before the round loop starts.
func (s *Session) BeginRound() {
	s.roundMu.Lock()
	defer s.roundMu.Unlock()
	s.roundSpeakers = nil
}

// RecordSpeaker appends a persona id to the speaker tracker.
func (s *Session) RecordSpeaker(id string) {
	s.roundMu.Lock()
	defer s.roundMu.Unlock()
	s.roundSpeakers = append(s.roundSpeakers, id)
}

// RoundSpeakers returns a copy of this round's speaking order.
func (s *Session) RoundSpeakers() []string {
	s.roundMu.Lock()
	defer s.roundMu.Unlock()
	return slices.Clone(s.roundSpeakers)
}
