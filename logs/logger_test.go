package logs

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanoutToTerminalAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "quill.log")
	off := false
	logger, closeLog, err := New(Options{Writer: &buf, File: file, Journal: &off})
	require.NoError(t, err)

	logger.Info("batch rendered", "words", 3)
	require.NoError(t, closeLog())

	require.Contains(t, buf.String(), "batch rendered")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"words":3`)
}

func TestLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	off := false
	logger, _, err := New(Options{Writer: &buf, Journal: &off})
	require.NoError(t, err)

	defer Level.Set(Level.Level())
	Level.Set(slog.LevelWarn)
	logger.Info("hidden")
	require.Empty(t, buf.String())

	Level.Set(slog.LevelDebug)
	logger.Debug("shown")
	require.True(t, strings.Contains(buf.String(), "shown"))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, l)
	l, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, l)
	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestToJournalKey(t *testing.T) {
	require.Equal(t, "JOB_ID", toJournalKey("job.id"))
	require.Equal(t, "WORDS", toJournalKey("words"))
}
