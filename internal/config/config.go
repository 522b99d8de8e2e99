// Package config provides run configuration for the PET preprocessing
// batch driver. Configuration is loaded from a YAML file when present and
// falls back to defaults matching the reference processing protocol.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Trim direction names accepted in configuration files.
const (
	ModeKeepAbove = "keep-above"
	ModeKeepBelow = "keep-below"
)

// Config represents the batch driver configuration loaded from YAML.
type Config struct {
	// Paths for the batch run
	Paths struct {
		// InputRoot contains one directory per disease code, each holding
		// one directory per patient study
		InputRoot string `yaml:"inputRoot"`

		// OutputRoot receives one <prefix>_threshold_<t> directory per
		// configured threshold
		OutputRoot string `yaml:"outputRoot"`

		// LogDir receives the run log file
		LogDir string `yaml:"logDir"`
	} `yaml:"paths"`

	// Trim parameters
	Trim struct {
		// Thresholds is the list of intensity cutoffs to process, each in [0,1]
		Thresholds []float64 `yaml:"thresholds"`

		// Mode selects which side of the threshold is kept: keep-above
		// trims low-intensity boundary slices, keep-below the opposite
		Mode string `yaml:"mode"`

		// MinSlices is the minimum depth of a trimmed volume
		MinSlices int `yaml:"minSlices"`
	} `yaml:"trim"`

	// Volume assembly parameters
	Volume struct {
		// TargetSize is the square slice size after resampling
		TargetSize int `yaml:"targetSize"`
	} `yaml:"volume"`

	// Workers is the number of patient studies processed concurrently.
	// Studies are independent, so no coordination is needed between them.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Paths.InputRoot = filepath.Join("data", "raw", "PET")
	cfg.Paths.OutputRoot = filepath.Join("data", "preprocessed", "PET")
	cfg.Paths.LogDir = "logs"

	cfg.Trim.Thresholds = []float64{0.5, 0.6, 0.7, 0.8}
	cfg.Trim.Mode = ModeKeepBelow
	cfg.Trim.MinSlices = 8

	cfg.Volume.TargetSize = 128

	cfg.Workers = 1

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Trim.Mode != ModeKeepAbove && c.Trim.Mode != ModeKeepBelow {
		return fmt.Errorf("invalid trim mode %q (want %q or %q)", c.Trim.Mode, ModeKeepAbove, ModeKeepBelow)
	}
	for _, t := range c.Trim.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("threshold %v out of range [0,1]", t)
		}
	}
	if c.Trim.MinSlices < 1 {
		return fmt.Errorf("minSlices must be at least 1, got %d", c.Trim.MinSlices)
	}
	if c.Volume.TargetSize < 1 {
		return fmt.Errorf("targetSize must be at least 1, got %d", c.Volume.TargetSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
