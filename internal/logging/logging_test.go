package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Options{}.ConsoleLevel())
	assert.Equal(t, slog.LevelDebug, Options{Verbose: true}.ConsoleLevel())
	assert.Equal(t, slog.LevelError, Options{Quiet: true, Verbose: true}.ConsoleLevel())
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "issue", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "issue=7")
}

func TestNew_FileSinkRecordsDebugAsJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "ghgantt.log")

	logger, closer, err := New(Options{Stderr: &buf, File: path})
	require.NoError(t, err)
	logger.With("run", "abc").Debug("detail", "step", 1)
	require.NoError(t, closer.Close())

	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "detail", rec["msg"])
	assert.Equal(t, "abc", rec["run"])
	assert.EqualValues(t, 1, rec["step"])
}
