package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Level(false, false))
	assert.Equal(t, slog.LevelInfo, Level(false, true))
	assert.Equal(t, slog.LevelDebug, Level(true, false))
	assert.Equal(t, slog.LevelDebug, Level(true, true), "--debug gana sobre --verbose")
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true

	t.Run("filters below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, false)

		l.Info("fetching issues")
		l.Warn("rate limited", "attempt", 1, "delay", 5*time.Second)

		out := buf.String()
		assert.NotContains(t, out, "fetching issues")
		assert.Contains(t, out, "[WARN] rate limited")
		assert.Contains(t, out, "attempt=1")
		assert.Contains(t, out, "delay=5s")
	})

	t.Run("includes attributes from With and groups", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, true).With("run_id", "abc").WithGroup("pylon")

		l.Info("issues.list", "count", 3)

		out := buf.String()
		assert.Contains(t, out, "[INFO]  issues.list")
		assert.Contains(t, out, "run_id=abc")
		assert.Contains(t, out, "pylon.count=3")
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithLogger(context.Background(), l)
	ctx = With(ctx, "issue_id", "iss_1")

	Debug(ctx, "fetching messages")
	Error(ctx, "fetch failed", assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "fetching messages")
	assert.Contains(t, out, "issue_id=iss_1")
	assert.Contains(t, out, assert.AnError.Error())
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
