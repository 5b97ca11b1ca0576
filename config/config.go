// Package config provides configuration loading and management for the
// gomrs command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gomrs configuration.
type Config struct {
	// Format is the default serialization format for files whose
	// extension does not select a codec.
	Format string `yaml:"format"`
	// Strict promotes structural warnings (missing scope heads,
	// duplicate constraints) to errors during validation.
	Strict bool `yaml:"strict"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string        `yaml:"log_level"`
	Compare  CompareConfig `yaml:"compare"`
}

// CompareConfig configures isomorphism comparison.
type CompareConfig struct {
	// StepLimit bounds the backtracking search; 0 means unlimited.
	StepLimit int `yaml:"step_limit"`
	// Properties controls whether variable property bags take part in
	// comparison. Unset means enabled.
	Properties *bool `yaml:"properties"`
}

// PropertiesEnabled reports the effective properties setting.
func (c CompareConfig) PropertiesEnabled() bool {
	return c.Properties == nil || *c.Properties
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:   "simplemrs",
		Strict:   false,
		LogLevel: "info",
		Compare: CompareConfig{
			StepLimit: 100000,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Format == "" {
		return fmt.Errorf("format is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	if c.Compare.StepLimit < 0 {
		return fmt.Errorf("compare.step_limit must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one; other takes precedence
// for set values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.Strict {
		c.Strict = true
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Compare.StepLimit != 0 {
		c.Compare.StepLimit = other.Compare.StepLimit
	}
	if other.Compare.Properties != nil {
		c.Compare.Properties = other.Compare.Properties
	}
}
