package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/hanzi-srs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected slog.Level
		ok       bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, ok := ParseLevel(tc.name)
			assert.Equal(t, tc.expected, level)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetupWritesJSONAtConfiguredLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	log := setup(config.ServerConfig{LogLevel: "warn"}, buf)

	log.Info("dropped")
	log.Warn("kept", "character", "学")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "学", entries[0]["character"])

	assert.Same(t, log, slog.Default())
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	log, buf := GetTestLogger(t)
	fallback := DiscardLogger()

	t.Run("missing logger falls back", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("carried logger wins", func(t *testing.T) {
		ctx := WithLogger(context.Background(), log)
		assert.Same(t, log, FromContextOrDefault(ctx, fallback))
	})

	t.Run("request id is attached", func(t *testing.T) {
		ctx := WithRequestID(WithLogger(context.Background(), log), "req-42")
		assert.Equal(t, "req-42", RequestIDFromContext(ctx))

		FromContext(ctx).Info("with trace")

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, "req-42", entries[len(entries)-1]["trace_id"])
	})
}
