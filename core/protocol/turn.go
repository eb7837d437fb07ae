// Package protocol defines the conversation data model shared by every
// roundtable subsystem: turns, roles, and capability definitions.
package protocol

// Role identifies the originator kind of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleFacilitator marks routing decisions recorded into the visible
	// log. Facilitator turns never enter the gateway-visible history.
	RoleFacilitator Role = "facilitator"
)

// SpeakerUser is the Speaker value for user turns.
const SpeakerUser = "user"

// Turn is a single utterance in a conversation. Turns are immutable once
// appended to a log; Sequence is assigned by the owning log on append and
// is strictly increasing within a session.
//
// Raw carries the unparsed gateway payload when structured-response
// parsing failed in lenient mode and raw persistence is enabled. It is
// what the gateway sees on subsequent calls; Content is what the user
// sees. For every other turn Raw is empty and Content serves both.
type Turn struct {
	Role     Role   `json:"role"`
	Speaker  string `json:"speaker"`
	Content  string `json:"content"`
	Raw      string `json:"raw,omitempty"`
	Sequence int    `json:"sequence"`
}

// NewTurn creates an unsequenced Turn with the given role, speaker, and
// content. The sequence number is assigned when the turn is appended.
func NewTurn(role Role, speaker, content string) Turn {
	return Turn{Role: role, Speaker: speaker, Content: content}
}

// UserTurn creates an unsequenced user turn.
func UserTurn(content string) Turn {
	return NewTurn(RoleUser, SpeakerUser, content)
}

// GatewayContent returns the text the model gateway should see for this
// turn: the preserved raw payload when present, otherwise the display
// content.
func (t Turn) GatewayContent() string {
	if t.Raw != "" {
		return t.Raw
	}
	return t.Content
}
