// Package logging builds the process logger.
package logging

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/andy6609/linechat/internal/config"
)

// New returns a logger writing to stdout and, when cfg.File is set, to a
// size-rotated file. The returned func flushes and closes the outputs.
func New(cfg config.LogConfig) (*zap.Logger, func(), error) {
	outputs := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	var rotated *lumberjack.Logger
	if cfg.File != "" {
		lg, err := newFileLog(cfg)
		if err != nil {
			return nil, nil, err
		}
		rotated = lg
		outputs = append(outputs, zapcore.AddSync(lg))
	}

	logger, err := NewWithWriteSyncer(cfg, zap.CombineWriteSyncers(outputs...))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = logger.Sync()
		if rotated != nil {
			_ = rotated.Close()
		}
	}
	return logger, cleanup, nil
}

// NewWithWriteSyncer returns a logger writing to output only.
func NewWithWriteSyncer(cfg config.LogConfig, output zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Format {
	case config.FormatConsole:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case config.FormatJSON, "":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, errors.Newf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, output, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newFileLog(cfg config.LogConfig) (*lumberjack.Logger, error) {
	if st, err := os.Stat(cfg.File); err == nil && st.IsDir() {
		return nil, errors.Newf("log file %q is a directory", cfg.File)
	}
	if dir := filepath.Dir(cfg.File); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create log dir %q", dir)
		}
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}, nil
}
