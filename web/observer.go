package web

import "github.com/tailored-agentic-units/roundtable/observability"

// Web surface event types.
const (
	EventSessionCreated observability.EventType = "web.session.created"
	EventFeedOpened     observability.EventType = "web.feed.opened"
	EventError          observability.EventType = "web.error"
)
