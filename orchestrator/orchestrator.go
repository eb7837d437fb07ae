// Package orchestrator implements the round loop that turns one user
// message into a facilitator-routed sequence of persona responses.
//
// The orchestrator initializes from configuration via New, creating all
// subsystems internally. Functional options allow test overrides of any
// subsystem.
//
//	o, err := orchestrator.New(cfg)
//	sess := conversation.NewSession()
//	turns, err := o.ProcessUserMessage(ctx, sess, "What should we build?")
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/roundtable/capability"
	"github.com/tailored-agentic-units/roundtable/conversation"
	"github.com/tailored-agentic-units/roundtable/core/protocol"
	"github.com/tailored-agentic-units/roundtable/facilitator"
	"github.com/tailored-agentic-units/roundtable/gateway"
	"github.com/tailored-agentic-units/roundtable/observability"
	"github.com/tailored-agentic-units/roundtable/persona"
	"github.com/tailored-agentic-units/roundtable/transcript"
)

// InvalidResponseContent is the display placeholder substituted when a
// structured payload fails to parse in lenient mode.
const InvalidResponseContent = "invalid response"

// SpeakerFacilitator is the Speaker value on recorded routing turns.
const SpeakerFacilitator = "facilitator"

// Recorder persists turns outside the in-memory log. Recording failures
// are reported to the observer and never abort a round.
type Recorder interface {
	Record(sessionID string, turn protocol.Turn) error
}

// Option configures an Orchestrator after config-driven initialization.
// Applied by New after cold start; overrides replace config-created
// defaults.
type Option func(*Orchestrator)

// WithRegistry overrides the config-created persona registry.
func WithRegistry(r *persona.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithGateway overrides the config-created HTTP gateway.
func WithGateway(gw gateway.Gateway) Option {
	return func(o *Orchestrator) { o.gw = gw }
}

// WithFacilitator overrides the config-selected facilitator.
func WithFacilitator(f facilitator.Facilitator) Option {
	return func(o *Orchestrator) { o.fac = f }
}

// WithObserver overrides the config-selected observer.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithRecorder overrides the config-created transcript recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// Orchestrator runs the per-user-message round loop: facilitator decides,
// persona speaks, repeat up to the round budget. One Orchestrator serves
// any number of independent sessions.
type Orchestrator struct {
	registry *persona.Registry
	fac      facilitator.Facilitator
	gw       gateway.Gateway
	observer observability.Observer
	recorder Recorder

	multiplier    int
	structured    bool
	strict        bool
	persistRaw    bool
	recordRouting bool
	roundScope    bool
}

// New creates an Orchestrator from configuration. Subsystems are
// initialized from their config sections; functional options applied after
// initialization can override any subsystem for testing. Gateway
// credentials are validated here, before any session work starts, unless
// an option supplies the gateway.
func New(cfg *Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := persona.NewRegistryFromConfigs(cfg.Personas)
	if err != nil {
		return nil, fmt.Errorf("failed to build persona registry: %w", err)
	}

	observer := observability.Observer(observability.NewSlogObserver(slog.Default()))
	if cfg.Observer != "" {
		observer, err = observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		registry:      reg,
		observer:      observer,
		multiplier:    cfg.SpeakingMultiplier,
		structured:    cfg.ResponseFormat == FormatStructured,
		strict:        cfg.StrictStructured,
		persistRaw:    cfg.PersistRaw,
		recordRouting: cfg.RecordRouting,
		roundScope:    cfg.Facilitator.Scope == ScopeRound,
	}
	if o.multiplier <= 0 {
		o.multiplier = defaultSpeakingMultiplier
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.registry.Len() == 0 {
		return nil, ErrNoPersonas
	}

	if o.gw == nil {
		o.gw, err = gateway.NewHTTPGateway(cfg.Gateway)
		if err != nil {
			return nil, fmt.Errorf("failed to create gateway: %w", err)
		}
	}

	if o.fac == nil {
		switch cfg.Facilitator.Mode {
		case FacilitatorRoundRobin:
			o.fac = facilitator.NewRoundRobin()
		default:
			var mopts []facilitator.ModelOption
			if cfg.Facilitator.Directive != "" {
				mopts = append(mopts, facilitator.WithDirective(cfg.Facilitator.Directive))
			}
			o.fac = facilitator.NewModel(o.gw, mopts...)
		}
	}

	if o.recorder == nil && cfg.Transcript.Dir != "" {
		w, err := transcript.NewWriter(&cfg.Transcript)
		if err != nil {
			return nil, fmt.Errorf("failed to create transcript writer: %w", err)
		}
		o.recorder = w
	}

	return o, nil
}

// Registry returns the orchestrator's persona registry.
func (o *Orchestrator) Registry() *persona.Registry {
	return o.registry
}

// ProcessUserMessage appends the user's message to the session log and
// runs up to roster×multiplier rounds, each one facilitator decision plus
// one persona completion. It returns the turns appended during the call,
// in order.
//
// A routing or gateway failure aborts the remaining rounds for this user
// message only: the turns appended before the failure are returned
// alongside the error, and the session stays usable for the next message.
// There is no early-completion signal; an error is the only way the loop
// stops before the budget.
func (o *Orchestrator) ProcessUserMessage(ctx context.Context, sess *conversation.Session, text string) ([]protocol.Turn, error) {
	if !sess.TryAcquire() {
		return nil, ErrSessionBusy
	}
	defer sess.Release()

	userTurn := sess.Log().Append(protocol.UserTurn(text))
	o.record(ctx, sess, userTurn)
	sess.BeginRound()

	roster := o.registry.IDs()
	maxRounds := len(roster) * o.multiplier

	o.emit(ctx, EventMessageStart, observability.LevelInfo, map[string]any{
		"session":        sess.ID(),
		"message_length": len(text),
		"max_rounds":     maxRounds,
	})

	var appended []protocol.Turn
	for round := 1; round <= maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return appended, err
		}

		o.emit(ctx, EventRoundStart, observability.LevelVerbose, map[string]any{
			"session": sess.ID(),
			"round":   round,
		})

		chosen, err := o.fac.Decide(ctx, text, o.facilitatorView(sess, appended), roster)
		if err != nil {
			o.emit(ctx, EventRoutingInvalid, observability.LevelWarning, map[string]any{
				"session": sess.ID(),
				"round":   round,
				"error":   err.Error(),
			})
			return appended, fmt.Errorf("round %d: routing failed: %w", round, err)
		}

		o.emit(ctx, EventRoutingDecision, observability.LevelVerbose, map[string]any{
			"session": sess.ID(),
			"round":   round,
			"speaker": chosen,
		})

		if o.recordRouting {
			t := sess.Log().Append(protocol.NewTurn(protocol.RoleFacilitator, SpeakerFacilitator, chosen))
			o.record(ctx, sess, t)
			appended = append(appended, t)
		}

		p, err := o.registry.Lookup(chosen)
		if err != nil {
			return appended, fmt.Errorf("round %d: %w", round, err)
		}

		raw, err := o.gw.Complete(ctx, gateway.Request{
			Directive:    p.Directive,
			History:      withoutRouting(sess.Log().Turns()),
			Capabilities: capability.Lookup(p.Capabilities...),
		})
		if err != nil {
			o.emit(ctx, EventError, observability.LevelError, map[string]any{
				"session": sess.ID(),
				"round":   round,
				"speaker": p.ID,
				"error":   err.Error(),
			})
			return appended, fmt.Errorf("round %d: persona %s completion failed: %w", round, p.ID, err)
		}

		turn, err := o.personaTurn(p.ID, raw)
		if err != nil {
			o.emit(ctx, EventError, observability.LevelError, map[string]any{
				"session": sess.ID(),
				"round":   round,
				"speaker": p.ID,
				"error":   err.Error(),
			})
			return appended, fmt.Errorf("round %d: %w", round, err)
		}

		turn = sess.Log().Append(turn)
		sess.RecordSpeaker(p.ID)
		o.record(ctx, sess, turn)
		appended = append(appended, turn)

		o.emit(ctx, EventPersonaResponse, observability.LevelInfo, map[string]any{
			"session":         sess.ID(),
			"round":           round,
			"speaker":         p.ID,
			"response_length": len(turn.Content),
		})
	}

	o.emit(ctx, EventMessageComplete, observability.LevelInfo, map[string]any{
		"session": sess.ID(),
		"turns":   len(appended),
	})

	return appended, nil
}

// facilitatorView returns the log view the facilitator routes on. Recorded
// routing turns are excluded in either scope.
func (o *Orchestrator) facilitatorView(sess *conversation.Session, appended []protocol.Turn) []protocol.Turn {
	if o.roundScope {
		return withoutRouting(appended)
	}
	return withoutRouting(sess.Log().Turns())
}

// withoutRouting filters facilitator-role turns out of a log view. Routing
// decisions stay internal; neither the gateway nor the facilitator sees
// them as history.
func withoutRouting(turns []protocol.Turn) []protocol.Turn {
	view := make([]protocol.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == protocol.RoleFacilitator {
			continue
		}
		view = append(view, t)
	}
	return view
}

// structuredPayload is the {"name","content"} shape of structured mode.
type structuredPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// personaTurn builds the unsequenced assistant turn for a raw gateway
// payload. Plain mode appends the payload as-is, empty included. In
// structured mode an unparsable payload either aborts the round (strict)
// or becomes the invalid-response placeholder, optionally preserving the
// raw text for later gateway calls.
func (o *Orchestrator) personaTurn(id, raw string) (protocol.Turn, error) {
	if !o.structured {
		return protocol.NewTurn(protocol.RoleAssistant, id, raw), nil
	}

	var payload structuredPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.Content == "" {
		if o.strict {
			return protocol.Turn{}, fmt.Errorf("structured payload unparsable: %w", gateway.ErrMalformed)
		}
		turn := protocol.NewTurn(protocol.RoleAssistant, id, InvalidResponseContent)
		if o.persistRaw {
			turn.Raw = raw
		}
		return turn, nil
	}

	return protocol.NewTurn(protocol.RoleAssistant, id, payload.Content), nil
}

func (o *Orchestrator) record(ctx context.Context, sess *conversation.Session, turn protocol.Turn) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(sess.ID(), turn); err != nil {
		o.emit(ctx, EventError, observability.LevelWarning, map[string]any{
			"session": sess.ID(),
			"error":   fmt.Sprintf("transcript record failed: %s", err),
		})
	}
}

func (o *Orchestrator) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	o.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "orchestrator.ProcessUserMessage",
		Data:      data,
	})
}
