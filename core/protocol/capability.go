package protocol

import "encoding/json"

// Capability defines a named side capability a persona may invoke through
// the model gateway. Parameters uses JSON Schema format to describe the
// capability's input. This is the canonical definition type used across
// the module.
type Capability struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CapabilityCall represents a capability invocation requested by the model.
// Fields are flat (ID, Name, Arguments) for direct use across the module.
// UnmarshalJSON transparently handles the nested chat-completions format
// (function.name, function.arguments) so gateway responses decode directly.
type CapabilityCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalJSON serializes to the nested chat-completions format
// ({type, function: {name, arguments}}) for round-trip fidelity with
// UnmarshalJSON when echoing calls back to the endpoint.
func (c CapabilityCall) MarshalJSON() ([]byte, error) {
	type fn struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	return json.Marshal(struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function fn     `json:"function"`
	}{
		ID:       c.ID,
		Type:     "function",
		Function: fn{Name: c.Name, Arguments: c.Arguments},
	})
}

// UnmarshalJSON handles both the nested chat-completions format
// ({function: {name, arguments}}) and the flat form ({name, arguments}).
func (c *CapabilityCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		c.ID = nested.ID
		c.Name = nested.Function.Name
		c.Arguments = nested.Function.Arguments
		return nil
	}

	type plain CapabilityCall
	return json.Unmarshal(data, (*plain)(c))
}
