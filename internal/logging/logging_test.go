package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "newsdash.log")

	logger, closeFn, err := New(Options{Level: zapcore.InfoLevel, Format: "json", Path: path})
	require.NoError(t, err)

	logger.Info("feed loaded", zap.Int("items", 10))
	logger.Debug("filtered out")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entry should be below the configured level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "feed loaded", entry["msg"])
	assert.Equal(t, float64(10), entry["items"])
	assert.Contains(t, entry, "ts")
}

func TestNewConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsdash.log")

	logger, closeFn, err := New(Options{Level: zapcore.DebugLevel, Format: "console", Path: path})
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.False(t, strings.HasPrefix(string(data), "{"), "console output should not be JSON")
}

func TestNewRequiresPath(t *testing.T) {
	_, _, err := New(Options{})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
