package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	SetLogger(NewText(&buf, false))
	Logger().Debug("hidden")
	Logger().Info("scene loaded", "points", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "scene loaded") || !strings.Contains(out, "points=4") {
		t.Errorf("missing info record: %q", out)
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, true)
	l.Debug("frame", "quads", 16)
	if !strings.Contains(buf.String(), "quads=16") {
		t.Errorf("debug record missing: %q", buf.String())
	}
}
