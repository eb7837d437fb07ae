package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

func TestNewTurn(t *testing.T) {
	turn := protocol.NewTurn(protocol.RoleAssistant, "Alpha", "hello")

	if turn.Role != protocol.RoleAssistant {
		t.Errorf("got role %q, want %q", turn.Role, protocol.RoleAssistant)
	}
	if turn.Speaker != "Alpha" {
		t.Errorf("got speaker %q, want %q", turn.Speaker, "Alpha")
	}
	if turn.Content != "hello" {
		t.Errorf("got content %q, want %q", turn.Content, "hello")
	}
	if turn.Sequence != 0 {
		t.Errorf("got sequence %d, want 0 before append", turn.Sequence)
	}
}

func TestUserTurn(t *testing.T) {
	turn := protocol.UserTurn("hi there")

	if turn.Role != protocol.RoleUser {
		t.Errorf("got role %q, want %q", turn.Role, protocol.RoleUser)
	}
	if turn.Speaker != protocol.SpeakerUser {
		t.Errorf("got speaker %q, want %q", turn.Speaker, protocol.SpeakerUser)
	}
}

func TestGatewayContent(t *testing.T) {
	tests := []struct {
		name string
		turn protocol.Turn
		want string
	}{
		{
			name: "plain turn uses content",
			turn: protocol.Turn{Content: "display text"},
			want: "display text",
		},
		{
			name: "raw payload wins when set",
			turn: protocol.Turn{Content: "invalid response", Raw: `{'name': 'Alpha'`},
			want: `{'name': 'Alpha'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.turn.GatewayContent(); got != tt.want {
				t.Errorf("GatewayContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCapabilityCall_UnmarshalNested(t *testing.T) {
	data := []byte(`{
		"id": "call_1",
		"type": "function",
		"function": {"name": "search", "arguments": "{\"query\":\"contracts\"}"}
	}`)

	var call protocol.CapabilityCall
	if err := json.Unmarshal(data, &call); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if call.ID != "call_1" {
		t.Errorf("got ID %q, want %q", call.ID, "call_1")
	}
	if call.Name != "search" {
		t.Errorf("got name %q, want %q", call.Name, "search")
	}
	if call.Arguments != `{"query":"contracts"}` {
		t.Errorf("got arguments %q", call.Arguments)
	}
}

func TestCapabilityCall_UnmarshalFlat(t *testing.T) {
	data := []byte(`{"id": "call_2", "name": "datetime", "arguments": "{}"}`)

	var call protocol.CapabilityCall
	if err := json.Unmarshal(data, &call); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if call.Name != "datetime" {
		t.Errorf("got name %q, want %q", call.Name, "datetime")
	}
}

func TestCapabilityCall_RoundTrip(t *testing.T) {
	original := protocol.CapabilityCall{
		ID:        "call_3",
		Name:      "search",
		Arguments: `{"query":"precedents","top_k":5}`,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded protocol.CapabilityCall
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}
