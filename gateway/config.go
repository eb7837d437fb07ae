package gateway

import "time"

const (
	defaultTemperature         = 0.7
	defaultMaxTokens           = 500
	defaultTimeout             = 2 * time.Minute
	defaultMaxCapabilityRounds = 5
)

// Config holds HTTP gateway initialization parameters.
type Config struct {
	// BaseURL is the endpoint root, e.g. "https://api.openai.com/v1" or
	// an Azure resource endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Path is the completion route relative to BaseURL. Defaults to
	// "chat/completions"; Azure deployments embed the deployment name,
	// e.g. "openai/deployments/gpt-4o/chat/completions".
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Model is the model selector sent in the request body. Optional for
	// Azure-style deployment paths.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey authenticates the request. Loaded from configuration or the
	// environment by the caller; required at startup.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// AuthHeader selects the credential header: "authorization" sends
	// "Authorization: Bearer <key>" (the default), "api-key" sends the
	// Azure-style "api-key: <key>".
	AuthHeader string `json:"auth_header,omitempty" yaml:"auth_header,omitempty"`

	// APIVersion, when set, is appended as the api-version query
	// parameter (Azure).
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`

	Temperature float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// MaxCapabilityRounds bounds capability round-trips within one
	// Complete call. Always finite; zero means the default.
	MaxCapabilityRounds int `json:"max_capability_rounds,omitempty" yaml:"max_capability_rounds,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults. BaseURL and
// APIKey have no defaults and must come from configuration.
func DefaultConfig() Config {
	return Config{
		Path:                "chat/completions",
		AuthHeader:          "authorization",
		Temperature:         defaultTemperature,
		MaxTokens:           defaultMaxTokens,
		Timeout:             defaultTimeout,
		MaxCapabilityRounds: defaultMaxCapabilityRounds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.AuthHeader != "" {
		c.AuthHeader = source.AuthHeader
	}
	if source.APIVersion != "" {
		c.APIVersion = source.APIVersion
	}
	if source.Temperature != 0 {
		c.Temperature = source.Temperature
	}
	if source.MaxTokens != 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.Timeout != 0 {
		c.Timeout = source.Timeout
	}
	if source.MaxCapabilityRounds != 0 {
		c.MaxCapabilityRounds = source.MaxCapabilityRounds
	}
}
