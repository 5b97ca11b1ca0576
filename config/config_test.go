package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "simplemrs", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Strict)
	assert.Equal(t, 100000, cfg.Compare.StepLimit)
	assert.True(t, cfg.Compare.PropertiesEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty format", func(c *Config) { c.Format = "" }, "format is required"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"negative step limit", func(c *Config) { c.Compare.StepLimit = -1 }, "step_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomrs.yaml")
	content := `
format: mrx
strict: true
log_level: debug
compare:
  step_limit: 5000
  properties: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mrx", cfg.Format)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5000, cfg.Compare.StepLimit)
	assert.False(t, cfg.Compare.PropertiesEnabled())
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomrs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "simplemrs", cfg.Format, "unset keys keep defaults")
	assert.True(t, cfg.Compare.PropertiesEnabled())
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: [unterminated"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	off := false
	base.Merge(&Config{
		Format:   "mrs-json",
		LogLevel: "warn",
		Compare:  CompareConfig{StepLimit: 42, Properties: &off},
	})

	assert.Equal(t, "mrs-json", base.Format)
	assert.Equal(t, "warn", base.LogLevel)
	assert.Equal(t, 42, base.Compare.StepLimit)
	assert.False(t, base.Compare.PropertiesEnabled())

	t.Run("zero values do not override", func(t *testing.T) {
		base.Merge(&Config{})
		assert.Equal(t, "mrs-json", base.Format)
		assert.Equal(t, 42, base.Compare.StepLimit)
		assert.False(t, base.Compare.PropertiesEnabled())
	})

	t.Run("nil merge is a no-op", func(t *testing.T) {
		base.Merge(nil)
		assert.Equal(t, "mrs-json", base.Format)
	})
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Format = "mrx"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mrx", loaded.Format)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLogLevel("debug").String())
	assert.Equal(t, "WARN", ParseLogLevel("warn").String())
	assert.Equal(t, "ERROR", ParseLogLevel("error").String())
	assert.Equal(t, "INFO", ParseLogLevel("info").String())
	assert.Equal(t, "INFO", ParseLogLevel("bogus").String())
}
