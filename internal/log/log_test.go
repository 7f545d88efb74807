package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestFromEnvOverlays(t *testing.T) {
	t.Setenv("BAYDESK_LOG_LEVEL", "debug")
	t.Setenv("BAYDESK_LOG_FILE", "")
	t.Setenv("BAYDESK_LOG_SOURCE", "TRUE")
	opts := FromEnv(Options{Level: "info", Format: "json", File: "/tmp/x.log"})
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "json", opts.Format)
	assert.Empty(t, opts.File)
	assert.True(t, opts.AddSource)
}

func TestNewWritesJSONToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "nested", "baydesk.log")
	logger, closer, err := New(Options{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("dialog_opened", slog.String("id", "abc"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "dialog_opened", rec["msg"])
	assert.Equal(t, "baydesk", rec["app"])
	assert.Equal(t, "abc", rec["id"])
	assert.Same(t, logger, slog.Default())
}

func TestNewWithoutSinksDiscards(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, closer, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	require.NoError(t, closer.Close())
}
