package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	fs := Flags()
	require.NoError(t, fs.Parse(args))
	cfg, err := Load(fs)
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg := parse(t)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "linechat.yaml", `
addr: ":7000"
max_sessions: 10
drain_timeout: 500ms
log:
  level: debug
  format: console
`)
	cfg := parse(t, "--config", path)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 10, cfg.MaxSessions)
	assert.Equal(t, 500*time.Millisecond, cfg.DrainTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FormatConsole, cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, Default().QueueSize, cfg.QueueSize)
	assert.Equal(t, Default().Log.MaxSizeMB, cfg.Log.MaxSizeMB)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "linechat.json", `{"queue_size": 8, "metrics_addr": ""}`)
	cfg := parse(t, "--config", path)

	assert.Equal(t, 8, cfg.QueueSize)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "linechat.yaml", "addr: \":7000\"\nqueue_size: 8\n")
	cfg := parse(t, "--config", path, "--addr", ":7100", "--log-level=warn")

	assert.Equal(t, ":7100", cfg.Addr)
	assert.Equal(t, 8, cfg.QueueSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))
	_, err := Load(fs)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--log-format", "xml"}))
	_, err := Load(fs)
	assert.ErrorContains(t, err, "log.format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = " " }},
		{"zero sessions", func(c *Config) { c.MaxSessions = 0 }},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }},
		{"negative line limit", func(c *Config) { c.MaxLineBytes = -1 }},
		{"zero drain timeout", func(c *Config) { c.DrainTimeout = 0 }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Log.Format = "text" }},
		{"file without size", func(c *Config) { c.Log.File = "x.log"; c.Log.MaxSizeMB = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
