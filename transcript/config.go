package transcript

// Config holds transcript writer initialization parameters.
type Config struct {
	// Dir is the directory transcript files are written into. Empty
	// disables transcript recording entirely.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// DefaultConfig returns a Config with transcript recording disabled.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}
}
