package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/scene"
	"github.com/chazu/bezel/pkg/tessellate"
	"github.com/google/go-cmp/cmp"
)

func TestResolveMissingFile(t *testing.T) {
	dir := t.TempDir()
	res, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := &Resolved{
		Root:       dir,
		Title:      DefaultTitle,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Settings:   scene.DefaultSettings(),
		Texture:    filepath.Join(dir, DefaultTexture),
		Background: render.Color{R: 0x1a / 255.0, G: 0x1a / 255.0, B: 0x1a / 255.0, A: 1},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	doc := `
window:       { title: demo, width: 640, height: 480 }
tessellation: { max_depth: 4, threshold: 0.02 }
sampling:     { step: 0.1 }
view:         { shape: surface, show_cage: false, wireframe: true, evaluate: true }
scene:        { script: examples/surface.bez }
texture:      { path: /tmp/tex.png }
render:       { background: "#000000" }
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	wantSettings := scene.Settings{
		Tessellation: tessellate.Config{MaxDepth: 4, Threshold: 0.02},
		Step:         0.1,
		ShowCage:     false,
		Wireframe:    true,
		Textured:     true,
		Tessellate:   true,
		Evaluate:     true,
		Shape:        scene.ShapeSurface,
	}
	if diff := cmp.Diff(wantSettings, res.Settings); diff != "" {
		t.Errorf("Settings mismatch (-want +got):\n%s", diff)
	}
	if res.Title != "demo" || res.Width != 640 || res.Height != 480 {
		t.Errorf("window = %q %dx%d", res.Title, res.Width, res.Height)
	}
	if want := filepath.Join(dir, "examples/surface.bez"); res.Script != want {
		t.Errorf("Script = %q, want %q", res.Script, want)
	}
	if res.Texture != "/tmp/tex.png" {
		t.Errorf("Texture = %q, want absolute path kept", res.Texture)
	}
	if res.Background != (render.Color{A: 1}) {
		t.Errorf("Background = %+v, want black", res.Background)
	}
}

func TestResolveClamps(t *testing.T) {
	cfg, err := Parse([]byte(`
window:       { width: 10, height: 100000 }
tessellation: { max_depth: 99, threshold: -3 }
sampling:     { step: 0 }
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := cfg.Resolve(".")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := res.Settings.Tessellation; got != (tessellate.Config{MaxDepth: tessellate.MaxDepth, Threshold: 0}) {
		t.Errorf("Tessellation = %+v", got)
	}
	if res.Settings.Step != scene.MinStep {
		t.Errorf("Step = %g, want %g", res.Settings.Step, scene.MinStep)
	}
	if res.Width != minDimension || res.Height != maxDimension {
		t.Errorf("window = %dx%d, want %dx%d", res.Width, res.Height, minDimension, maxDimension)
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown shape", "view: { shape: torus }"},
		{"bad background", `render: { background: "#12" }`},
		{"negative width", "window: { width: -1 }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := cfg.Resolve("."); !errors.Is(err, ErrInvalid) {
				t.Errorf("Resolve error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("tesselation: { max_depth: 3 }")); err == nil {
		t.Error("misspelled section should be rejected")
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("empty document mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load error = %v, want ErrNotExist", err)
	}
}
