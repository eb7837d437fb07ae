package observability

import "context"

// NoOpObserver discards every event. It is the default sink when no
// observer is configured.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver fans each event out to a fixed set of observers.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver over the non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	kept := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			kept = append(kept, obs)
		}
	}
	return &MultiObserver{observers: kept}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
