package main

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/chazu/bezel/pkg/config"
	"github.com/chazu/bezel/pkg/scene"
)

// newTestApp builds an App from the defaults with no texture and no script.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := (&config.Config{}).Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return NewApp(cfg)
}

// decodeFrame checks that a frame carries a PNG data URL of the given size.
func decodeFrame(t *testing.T, f FrameData, width, height int) {
	t.Helper()
	if f.Error != "" {
		t.Fatalf("frame error: %s", f.Error)
	}
	data, ok := strings.CutPrefix(f.Image, "data:image/png;base64,")
	if !ok {
		t.Fatalf("image is not a PNG data URL: %.40q", f.Image)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
}

// TestE2EProjectConfig exercises the full startup path with the checked-in
// bezel.yaml: config, scene script, texture, frame.
func TestE2EProjectConfig(t *testing.T) {
	cfg, err := config.Resolve(".")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	app := NewApp(cfg)

	st := app.State()
	if !st.HasTexture {
		t.Error("expected the project texture to load")
	}
	if st.Scene.Settings.Shape != scene.ShapeCurve {
		t.Errorf("Shape = %s, want curve", st.Scene.Settings.Shape)
	}

	f := app.Frame(320, 180)
	decodeFrame(t, f, 320, 180)
	if f.Stats.Lines == 0 {
		t.Error("expected tessellated curve lines")
	}
}

// TestE2ESurfaceExample evaluates examples/surface.bez through the binding.
func TestE2ESurfaceExample(t *testing.T) {
	cfg, err := config.Resolve(".")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	app := NewApp(cfg)

	res, err := app.engine.RunFile(app.start, "examples/surface.bez")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("eval errors: %v", res.Errors)
	}
	if res.Scene.Surface.Rows() != 4 || res.Scene.Surface.Cols() != 4 {
		t.Errorf("surface is %dx%d, want 4x4", res.Scene.Surface.Rows(), res.Scene.Surface.Cols())
	}
	if got := res.Scene.Selection; got.Row != 1 || got.Col != 1 {
		t.Errorf("Selection = %+v, want row 1 col 1", got)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if result.State.Scene == nil {
		t.Fatal("expected state with a scene")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors, and
// the scene is left alone.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	before := app.State().Scene

	result := app.Evaluate("(curve (pt 0 0)")
	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if got := result.State.Scene.Curve; len(got) != len(before.Curve) {
		t.Errorf("curve changed on error: %v", got)
	}
}

// TestE2ECurveScript replaces the curve and renders it.
func TestE2ECurveScript(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(curve (pt -1 0) (pt 1 0))`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if n := len(result.State.Scene.Curve); n != 2 {
		t.Fatalf("curve has %d points, want 2", n)
	}

	f := app.Frame(200, 100)
	decodeFrame(t, f, 200, 100)
	// A straight line never splits.
	if f.Stats.Lines != 1+1 {
		t.Errorf("Lines = %d, want 1 chord + 1 cage segment", f.Stats.Lines)
	}
}
