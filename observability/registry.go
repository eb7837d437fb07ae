package observability

import (
	"fmt"
	"log/slog"
	"sync"
)

var (
	mutex     sync.RWMutex
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
)

// GetObserver returns a registered observer by name. "noop" and "slog"
// (backed by slog.Default) are pre-registered.
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, ok := observers[name]
	if !ok {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer in the global registry.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}
