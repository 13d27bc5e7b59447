package kaleido

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	s := NewSurface(&fakeRegion{w: 20, h: 10, dpr: 1})
	defer s.Dispose()

	if !strings.Contains(buf.String(), "kaleido: surface rebuilt") {
		t.Errorf("log = %q, want a surface rebuild record", buf.String())
	}
}
