package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.InputRoot != filepath.Join("data", "raw", "PET") {
		t.Errorf("input root = %q", cfg.Paths.InputRoot)
	}
	if len(cfg.Trim.Thresholds) != 4 || cfg.Trim.Thresholds[0] != 0.5 || cfg.Trim.Thresholds[3] != 0.8 {
		t.Errorf("thresholds = %v, want [0.5 0.6 0.7 0.8]", cfg.Trim.Thresholds)
	}
	if cfg.Trim.Mode != ModeKeepBelow {
		t.Errorf("mode = %q, want %q", cfg.Trim.Mode, ModeKeepBelow)
	}
	if cfg.Trim.MinSlices != 8 {
		t.Errorf("minSlices = %d, want 8", cfg.Trim.MinSlices)
	}
	if cfg.Volume.TargetSize != 128 {
		t.Errorf("targetSize = %d, want 128", cfg.Volume.TargetSize)
	}
	if cfg.Workers != 1 {
		t.Errorf("workers = %d, want 1", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate, got: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig unexpected error: %v", err)
	}
	if cfg.Trim.MinSlices != 8 || cfg.Volume.TargetSize != 128 {
		t.Error("missing file must yield the default configuration")
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	content := `
paths:
  inputRoot: /scans/pet
  outputRoot: /scans/out
trim:
  thresholds: [0.6]
  mode: keep-above
  minSlices: 12
volume:
  targetSize: 64
workers: 4
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig unexpected error: %v", err)
	}
	if cfg.Paths.InputRoot != "/scans/pet" {
		t.Errorf("input root = %q, want /scans/pet", cfg.Paths.InputRoot)
	}
	if len(cfg.Trim.Thresholds) != 1 || cfg.Trim.Thresholds[0] != 0.6 {
		t.Errorf("thresholds = %v, want [0.6]", cfg.Trim.Thresholds)
	}
	if cfg.Trim.Mode != ModeKeepAbove {
		t.Errorf("mode = %q, want %q", cfg.Trim.Mode, ModeKeepAbove)
	}
	if cfg.Trim.MinSlices != 12 || cfg.Volume.TargetSize != 64 || cfg.Workers != 4 {
		t.Error("numeric overrides not applied")
	}
	// Keys absent from the file keep their defaults.
	if cfg.Paths.LogDir != "logs" {
		t.Errorf("log dir = %q, want default logs", cfg.Paths.LogDir)
	}
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("trim: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad mode", func(c *Config) { c.Trim.Mode = "keep-all" }, false},
		{"threshold above one", func(c *Config) { c.Trim.Thresholds = []float64{1.5} }, false},
		{"negative threshold", func(c *Config) { c.Trim.Thresholds = []float64{-0.1} }, false},
		{"zero minSlices", func(c *Config) { c.Trim.MinSlices = 0 }, false},
		{"zero targetSize", func(c *Config) { c.Volume.TargetSize = 0 }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
