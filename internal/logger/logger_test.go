package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestToggleDebug flips the global level and restores the configured one.
// Not parallel: it mutates the global level.
func TestToggleDebug(t *testing.T) {
	SetLevel(zapcore.WarnLevel)
	defer SetLevel(zapcore.InfoLevel)

	require.True(t, ToggleDebug())
	require.Equal(t, zapcore.DebugLevel, Level())

	// Level changes while debugging are remembered, not applied.
	SetLevel(zapcore.ErrorLevel)
	require.Equal(t, zapcore.DebugLevel, Level())

	require.False(t, ToggleDebug())
	require.Equal(t, zapcore.ErrorLevel, Level())
}

// TestContextHelpers ensures named loggers travel through the context.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	ctx := WithName(context.Background(), "bridge")
	require.NotSame(t, Logger(), FromContext(ctx))

	named := FromContext(ctx)
	ctx = WithKV(ctx, "player_id", 0)
	require.NotSame(t, named, FromContext(ctx))
}
