package logx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":    LevelTrace,
		"DEBUG":    slog.LevelDebug,
		"":         slog.LevelInfo,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": LevelCritical,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRendersEngineLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelTrace)
	Trace(l, "cache hit", "shader", "Basic")
	Critical(l, "program creation failed")

	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "shader=Basic")
	assert.Contains(t, out, "level=CRITICAL")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	Trace(l, "hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.False(t, l.Enabled(context.Background(), LevelCritical))
	assert.NotNil(t, Or(nil))
	assert.Same(t, l, Or(l))
}
