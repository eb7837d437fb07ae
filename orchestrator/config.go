package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/roundtable/gateway"
	"github.com/tailored-agentic-units/roundtable/persona"
	"github.com/tailored-agentic-units/roundtable/transcript"
)

const defaultSpeakingMultiplier = 1

// Response format modes.
const (
	FormatPlain      = "plain"
	FormatStructured = "structured"
)

// Facilitator modes.
const (
	FacilitatorModel      = "model"
	FacilitatorRoundRobin = "roundrobin"
)

// Facilitator scope modes.
const (
	ScopeFull  = "full"
	ScopeRound = "round"
)

// FacilitatorConfig selects and tunes the next-speaker decision.
type FacilitatorConfig struct {
	// Mode selects the implementation: "model" (gateway-routed, the
	// default) or "roundrobin" (deterministic rotation in roster order).
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Directive overrides the built-in routing instruction (model mode).
	Directive string `json:"directive,omitempty" yaml:"directive,omitempty"`

	// Scope selects the log view the facilitator routes on: "full" (the
	// whole conversation, the default) or "round" (only the turns spoken
	// since the current user message).
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *FacilitatorConfig) Merge(source *FacilitatorConfig) {
	if source.Mode != "" {
		c.Mode = source.Mode
	}
	if source.Directive != "" {
		c.Directive = source.Directive
	}
	if source.Scope != "" {
		c.Scope = source.Scope
	}
}

// Config holds initialization parameters for the orchestrator and all its
// subsystems. Subsystem sections delegate to that subsystem's config.
type Config struct {
	Gateway     gateway.Config    `json:"gateway" yaml:"gateway"`
	Personas    []persona.Config  `json:"personas,omitempty" yaml:"personas,omitempty"`
	Facilitator FacilitatorConfig `json:"facilitator" yaml:"facilitator"`
	Transcript  transcript.Config `json:"transcript" yaml:"transcript"`

	// SpeakingMultiplier scales the round budget per user message:
	// maxRounds = roster size × SpeakingMultiplier.
	SpeakingMultiplier int `json:"speaking_multiplier,omitempty" yaml:"speaking_multiplier,omitempty"`

	// ResponseFormat selects how persona payloads are interpreted:
	// "plain" (the default) or "structured" ({"name","content"} JSON).
	ResponseFormat string `json:"response_format,omitempty" yaml:"response_format,omitempty"`

	// StrictStructured makes an unparsable structured payload abort the
	// round instead of substituting the invalid-response placeholder.
	StrictStructured bool `json:"strict_structured,omitempty" yaml:"strict_structured,omitempty"`

	// PersistRaw keeps the unparsed payload on lenient-mode placeholder
	// turns so subsequent gateway calls see the original text.
	PersistRaw bool `json:"persist_raw,omitempty" yaml:"persist_raw,omitempty"`

	// RecordRouting appends each facilitator decision to the log as a
	// facilitator-role turn. Routing turns never reach the gateway.
	RecordRouting bool `json:"record_routing,omitempty" yaml:"record_routing,omitempty"`

	// Observer names a registered observer ("slog", "noop", or one added
	// via observability.RegisterObserver).
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Gateway:            gateway.DefaultConfig(),
		Transcript:         transcript.DefaultConfig(),
		Facilitator:        FacilitatorConfig{Mode: FacilitatorModel, Scope: ScopeFull},
		SpeakingMultiplier: defaultSpeakingMultiplier,
		ResponseFormat:     FormatPlain,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Gateway.Merge(&source.Gateway)
	c.Facilitator.Merge(&source.Facilitator)
	c.Transcript.Merge(&source.Transcript)

	if len(source.Personas) > 0 {
		c.Personas = source.Personas
	}
	if source.SpeakingMultiplier > 0 {
		c.SpeakingMultiplier = source.SpeakingMultiplier
	}
	if source.ResponseFormat != "" {
		c.ResponseFormat = source.ResponseFormat
	}
	if source.StrictStructured {
		c.StrictStructured = true
	}
	if source.PersistRaw {
		c.PersistRaw = true
	}
	if source.RecordRouting {
		c.RecordRouting = true
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Validate checks mode selectors against their known values.
func (c *Config) Validate() error {
	switch c.ResponseFormat {
	case FormatPlain, FormatStructured:
	default:
		return fmt.Errorf("unknown response format: %s", c.ResponseFormat)
	}
	switch c.Facilitator.Mode {
	case FacilitatorModel, FacilitatorRoundRobin:
	default:
		return fmt.Errorf("unknown facilitator mode: %s", c.Facilitator.Mode)
	}
	switch c.Facilitator.Scope {
	case ScopeFull, ScopeRound:
	default:
		return fmt.Errorf("unknown facilitator scope: %s", c.Facilitator.Scope)
	}
	return nil
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. The format is chosen by extension: .yaml/.yml parse as
// YAML, everything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
