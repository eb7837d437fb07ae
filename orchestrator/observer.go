package orchestrator

import "github.com/tailored-agentic-units/roundtable/observability"

// Orchestrator event types emitted during the round loop.
const (
	EventMessageStart    observability.EventType = "orchestrator.message.start"
	EventMessageComplete observability.EventType = "orchestrator.message.complete"
	EventRoundStart      observability.EventType = "orchestrator.round.start"
	EventRoutingDecision observability.EventType = "orchestrator.routing.decision"
	EventRoutingInvalid  observability.EventType = "orchestrator.routing.invalid"
	EventPersonaResponse observability.EventType = "orchestrator.persona.response"
	EventError           observability.EventType = "orchestrator.error"
)
