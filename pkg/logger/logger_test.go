package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(level slog.Level, msg string, attrs ...slog.Attr) slog.Record {
	r := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), level, msg, 0)
	r.AddAttrs(attrs...)
	return r
}

func TestColorHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	h := newColorHandler(&buf, slog.LevelInfo)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelError, "boom")))
	assert.Contains(t, buf.String(), colorRed)

	buf.Reset()
	require.NoError(t, h.Handle(context.Background(), record(slog.LevelWarn, "careful")))
	assert.Contains(t, buf.String(), colorYellow)

	buf.Reset()
	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "Persisting communities")))
	assert.Contains(t, buf.String(), colorGreen)

	buf.Reset()
	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "plain message")))
	assert.NotContains(t, buf.String(), colorReset)
}

func TestColorHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newColorHandler(&buf, slog.LevelInfo).WithAttrs([]slog.Attr{slog.String("component", "detector")})

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "run", slog.Int("k", 15))))
	out := buf.String()
	assert.Contains(t, out, "component=detector")
	assert.Contains(t, out, "k=15")
}

func TestColorHandlerEnabled(t *testing.T) {
	h := newColorHandler(&bytes.Buffer{}, slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestNewLoggerFormats(t *testing.T) {
	assert.NotNil(t, NewLogger("debug", "text"))
	assert.NotNil(t, NewLogger("info", "json"))
	assert.NotNil(t, NewLogger("unknown", ""))
}
