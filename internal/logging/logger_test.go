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

	"github.com/sandeepkv93/remindd/internal/config"
)

func TestNewJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	log.Debug("hidden")
	log.Named("scanner").Info("scan finished", zap.Int("fired", 2))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scan finished", entry["msg"])
	assert.Equal(t, "remindd", entry["service"])
	assert.Equal(t, "scanner", entry["logger"])
	assert.Contains(t, entry, "ts")
	assert.EqualValues(t, 2, entry["fired"])
}

func TestNewToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "remindd.log")
	log, closeFn, err := New(config.LoggingConfig{Level: "debug", Format: "console", File: path}, nil)
	require.NoError(t, err)

	log.Debug("written to file")
	require.NoError(t, log.Sync())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewWithoutSinkIsNop(t *testing.T) {
	log, closeFn, err := New(config.LoggingConfig{Level: "info", Format: "json"}, nil)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	log.Info("nowhere")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "chatty", Format: "json"}, nil)
	require.Error(t, err)
}
