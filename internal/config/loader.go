package config

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const FlagConfig = "config"

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"addr":           "addr",
	"metrics-addr":   "metrics_addr",
	"max-sessions":   "max_sessions",
	"queue-size":     "queue_size",
	"max-line-bytes": "max_line_bytes",
	"drain-timeout":  "drain_timeout",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"log-file":       "log.file",
}

// Flags returns the flag set understood by Load.
func Flags() *pflag.FlagSet {
	d := Default()
	fs := pflag.NewFlagSet("linechat", pflag.ContinueOnError)

	fs.String(FlagConfig, "", "YAML or JSON config file")

	// ── listeners ────────────────────────────────────────────────
	fs.String("addr", d.Addr, "Chat listen address")
	fs.String("metrics-addr", d.MetricsAddr, "Metrics listen address (empty disables)")

	// ── limits ───────────────────────────────────────────────────
	fs.Int("max-sessions", d.MaxSessions, "Maximum concurrent sessions")
	fs.Int("queue-size", d.QueueSize, "Outbound lines buffered per session")
	fs.Int("max-line-bytes", d.MaxLineBytes, "Input lines are truncated to this length")
	fs.Duration("drain-timeout", d.DrainTimeout, "How long a closing session may flush output")

	// ── logging ──────────────────────────────────────────────────
	fs.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.Log.Format, "Log format (json, console)")
	fs.String("log-file", d.Log.File, "Also log to this rotated file")

	return fs
}

// Load resolves the configuration from defaults, the file named by the
// config flag, and flags that were set explicitly, in that order of
// precedence. fs must have been parsed.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, errors.Wrapf(err, "bind flag %s", name)
		}
	}

	if path, _ := fs.GetString(FlagConfig); path != "" {
		if err := readFile(v, path); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "load config file %q", path)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("addr", d.Addr)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("max_sessions", d.MaxSessions)
	v.SetDefault("queue_size", d.QueueSize)
	v.SetDefault("max_line_bytes", d.MaxLineBytes)
	v.SetDefault("drain_timeout", d.DrainTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}
