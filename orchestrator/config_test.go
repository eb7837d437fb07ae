package orchestrator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/roundtable/orchestrator"
)

func TestDefaultConfig(t *testing.T) {
	cfg := orchestrator.DefaultConfig()

	if cfg.SpeakingMultiplier != 1 {
		t.Errorf("got SpeakingMultiplier %d, want 1", cfg.SpeakingMultiplier)
	}
	if cfg.ResponseFormat != orchestrator.FormatPlain {
		t.Errorf("got ResponseFormat %q, want plain", cfg.ResponseFormat)
	}
	if cfg.Facilitator.Mode != orchestrator.FacilitatorModel {
		t.Errorf("got Facilitator.Mode %q, want model", cfg.Facilitator.Mode)
	}
	if cfg.Facilitator.Scope != orchestrator.ScopeFull {
		t.Errorf("got Facilitator.Scope %q, want full", cfg.Facilitator.Scope)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := orchestrator.DefaultConfig()

	source := &orchestrator.Config{
		SpeakingMultiplier: 2,
		ResponseFormat:     orchestrator.FormatStructured,
		PersistRaw:         true,
	}
	source.Facilitator.Mode = orchestrator.FacilitatorRoundRobin
	source.Gateway.Model = "gpt-4o"

	cfg.Merge(source)

	if cfg.SpeakingMultiplier != 2 {
		t.Errorf("got SpeakingMultiplier %d, want 2", cfg.SpeakingMultiplier)
	}
	if cfg.ResponseFormat != orchestrator.FormatStructured {
		t.Errorf("got ResponseFormat %q", cfg.ResponseFormat)
	}
	if !cfg.PersistRaw {
		t.Error("PersistRaw not merged")
	}
	if cfg.Facilitator.Mode != orchestrator.FacilitatorRoundRobin {
		t.Errorf("got Facilitator.Mode %q", cfg.Facilitator.Mode)
	}
	if cfg.Gateway.Model != "gpt-4o" {
		t.Errorf("got Gateway.Model %q", cfg.Gateway.Model)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := orchestrator.DefaultConfig()

	cfg.Merge(&orchestrator.Config{})

	if cfg.SpeakingMultiplier != 1 {
		t.Errorf("got SpeakingMultiplier %d, want preserved default 1", cfg.SpeakingMultiplier)
	}
	if cfg.Gateway.Path != "chat/completions" {
		t.Errorf("got Gateway.Path %q, want preserved default", cfg.Gateway.Path)
	}
	if cfg.Facilitator.Scope != orchestrator.ScopeFull {
		t.Errorf("got Facilitator.Scope %q, want preserved default", cfg.Facilitator.Scope)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*orchestrator.Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*orchestrator.Config) {}},
		{name: "structured format", mutate: func(c *orchestrator.Config) { c.ResponseFormat = orchestrator.FormatStructured }},
		{name: "unknown format", mutate: func(c *orchestrator.Config) { c.ResponseFormat = "xml" }, wantErr: true},
		{name: "unknown facilitator mode", mutate: func(c *orchestrator.Config) { c.Facilitator.Mode = "coin-flip" }, wantErr: true},
		{name: "unknown scope", mutate: func(c *orchestrator.Config) { c.Facilitator.Scope = "partial" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := orchestrator.DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	content := `{
		"speaking_multiplier": 2,
		"response_format": "structured",
		"gateway": {
			"base_url": "https://api.example.com/v1",
			"model": "gpt-4o"
		},
		"personas": [
			{"id": "Alpha", "directive": "You are Alpha."}
		]
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := orchestrator.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SpeakingMultiplier != 2 {
		t.Errorf("got SpeakingMultiplier %d, want 2", cfg.SpeakingMultiplier)
	}
	if cfg.Gateway.BaseURL != "https://api.example.com/v1" {
		t.Errorf("got Gateway.BaseURL %q", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Path != "chat/completions" {
		t.Errorf("defaults lost in merge: Gateway.Path = %q", cfg.Gateway.Path)
	}
	if len(cfg.Personas) != 1 || cfg.Personas[0].ID != "Alpha" {
		t.Errorf("personas not loaded: %+v", cfg.Personas)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
gateway:
  base_url: https://api.example.com/v1
  model: gpt-4o
facilitator:
  mode: roundrobin
personas:
  - id: Alpha
    directive: You are Alpha.
    capabilities: [datetime]
  - id: Beta
    directive: You are Beta.
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := orchestrator.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Facilitator.Mode != orchestrator.FacilitatorRoundRobin {
		t.Errorf("got Facilitator.Mode %q", cfg.Facilitator.Mode)
	}
	if len(cfg.Personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(cfg.Personas))
	}
	if cfg.Personas[0].Capabilities[0] != "datetime" {
		t.Errorf("capabilities not loaded: %+v", cfg.Personas[0])
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := orchestrator.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidSelector(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(configPath, []byte(`{"response_format": "csv"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := orchestrator.LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}
