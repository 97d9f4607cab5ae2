package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileWriter_KeepsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "crmcal.log")
	w, err := newLogFileWriter(path, 64, 32)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte(strings.Repeat("a", 60)))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("b", 20)))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 32)
	require.Equal(t, strings.Repeat("a", 12)+strings.Repeat("b", 20), string(data))
}

func TestLogFileWriter_UnderLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crmcal.log")
	w, err := newLogFileWriter(path, 1024, 512)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))
	dir := filepath.Join(t.TempDir(), "nested", "db")
	require.NoError(t, ensureDBDir(filepath.Join(dir, "crmcal.db")))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
