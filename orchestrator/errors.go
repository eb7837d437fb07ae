package orchestrator

import "errors"

var (
	// ErrSessionBusy means the session already has a round loop in flight;
	// the new user message was not appended.
	ErrSessionBusy = errors.New("session is busy")

	// ErrNoPersonas means the configuration defines an empty roster.
	ErrNoPersonas = errors.New("no personas configured")
)
