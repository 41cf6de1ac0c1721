package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andy6609/linechat/internal/config"
)

func TestNewWithWriteSyncer_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default().Log
	logger, err := NewWithWriteSyncer(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("client connected", zap.String("identity", "alice"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "client connected", entry["msg"])
	assert.Equal(t, "alice", entry["identity"])
}

func TestNewWithWriteSyncer_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{Level: "debug", Format: config.FormatConsole}
	logger, err := NewWithWriteSyncer(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("joined topic", zap.String("topic", "#go"))
	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "joined topic")
	assert.Contains(t, out, `{"topic": "#go"}`)
}

func TestNewWithWriteSyncer_Rejects(t *testing.T) {
	_, err := NewWithWriteSyncer(config.LogConfig{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)

	_, err = NewWithWriteSyncer(config.LogConfig{Level: "info", Format: "xml"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "linechat.log")
	cfg := config.Default().Log
	cfg.File = path

	logger, cleanup, err := New(cfg)
	require.NoError(t, err)
	logger.Warn("read failed")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "read failed")
}

func TestNew_FileIsDirectory(t *testing.T) {
	cfg := config.Default().Log
	cfg.File = t.TempDir()

	_, _, err := New(cfg)
	assert.Error(t, err)
}
