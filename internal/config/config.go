// Package config holds the server settings and loads them from defaults, an
// optional YAML or JSON file, and command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables a rotated log file next to stdout when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Config struct {
	Addr string `mapstructure:"addr"`
	// MetricsAddr serves /metrics; empty disables the endpoint.
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	MaxSessions  int           `mapstructure:"max_sessions"`
	QueueSize    int           `mapstructure:"queue_size"`
	MaxLineBytes int           `mapstructure:"max_line_bytes"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
	Log          LogConfig     `mapstructure:"log"`
}

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

func Default() Config {
	return Config{
		Addr:         ":9091",
		MetricsAddr:  ":9090",
		MaxSessions:  1024,
		QueueSize:    64,
		MaxLineBytes: 4096,
		DrainTimeout: 2 * time.Second,
		Log: LogConfig{
			Level:      "info",
			Format:     FormatJSON,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if c.MaxSessions <= 0 {
		return errors.Newf("max_sessions must be positive, got %d", c.MaxSessions)
	}
	if c.QueueSize <= 0 {
		return errors.Newf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.MaxLineBytes <= 0 {
		return errors.Newf("max_line_bytes must be positive, got %d", c.MaxLineBytes)
	}
	if c.DrainTimeout <= 0 {
		return errors.Newf("drain_timeout must be positive, got %s", c.DrainTimeout)
	}
	return c.Log.Validate()
}

func (c LogConfig) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return errors.Wrapf(err, "log.level %q", c.Level)
	}
	switch c.Format {
	case FormatJSON, FormatConsole:
	default:
		return errors.Newf("log.format must be %q or %q, got %q", FormatJSON, FormatConsole, c.Format)
	}
	if c.File != "" && (c.MaxSizeMB <= 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0) {
		return errors.New("log rotation limits must not be negative and max_size_mb must be positive")
	}
	return nil
}
