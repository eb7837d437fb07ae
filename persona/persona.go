// Package persona defines the roster of conversational personas: named
// behavioral directives, each optionally bound to a set of capabilities.
package persona

// Persona is a named behavioral directive a gateway call can be bound to.
// Constructed once at startup from configuration and immutable thereafter.
type Persona struct {
	// ID is the unique stable identifier, used for display and as the
	// facilitator's required output token.
	ID string

	// Directive is the free-text behavioral instruction sent to the
	// gateway as the persona's system content.
	Directive string

	// Capabilities names the side capabilities this persona may invoke,
	// in configuration order. Empty for simple personas.
	Capabilities []string
}

// Config describes one persona in the module configuration. Personas are
// configured as an ordered list, not a map: registration order is the
// roster order and the rotation order of the round-robin facilitator.
type Config struct {
	ID           string   `json:"id" yaml:"id"`
	Directive    string   `json:"directive" yaml:"directive"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}
