package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "client.log")
	logger, closer, err := Open(path, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("request done", "status", 201)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "request done")
	require.Contains(t, string(data), "status=201")
	require.False(t, strings.Contains(string(data), "hidden"))
}

func TestOpenEmptyPathDiscards(t *testing.T) {
	logger, closer, err := Open("", "debug")
	require.NoError(t, err)
	logger.Info("nothing")
	require.NoError(t, closer.Close())
}
