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
		"debug":    zapcore.DebugLevel,
		"INFO":     zapcore.InfoLevel,
		"warn":     zapcore.WarnLevel,
		"WARNING":  zapcore.WarnLevel,
		"error":    zapcore.ErrorLevel,
		"CRITICAL": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext ensures the context helpers return the stored logger and
// fall back to the global one.
func TestFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Same(t, Logger(), FromContext(ctx))

	named := Logger().Named("test")
	ctx = ToContext(ctx, named)
	require.Same(t, named, FromContext(ctx))
}
