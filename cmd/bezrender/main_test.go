package main

import (
	"bytes"
	"encoding/xml"
	"errors"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeProject creates a config and a scene script in a temp dir and
// returns the config path.
func writeProject(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "window: { width: 160, height: 90 }\nscene: { script: scene.bez }\ntexture: { path: none.png }\n"
	if err := os.WriteFile(filepath.Join(dir, "bezel.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scene.bez"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "bezel.yaml")
}

func TestRunPNG(t *testing.T) {
	cfg := writeProject(t, "(curve (pt 0 0) (pt 1 2) (pt 2 0))")
	out := filepath.Join(t.TempDir(), "frame.png")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfg, "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error: %v\nstderr: %s", err, stderr.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Errorf("image is %dx%d, want 160x90 from the config", b.Dx(), b.Dy())
	}
	if !strings.Contains(stdout.String(), "160x90") {
		t.Errorf("stdout = %q, want a summary with the size", stdout.String())
	}
	// The missing texture is a warning, not a failure.
	if !strings.Contains(stderr.String(), "failed to load texture") {
		t.Errorf("stderr = %q, want a texture warning", stderr.String())
	}
}

func TestRunSVGSurface(t *testing.T) {
	cfg := writeProject(t, "(view :wireframe true)")
	out := filepath.Join(t.TempDir(), "frame.svg")

	var stdout, stderr bytes.Buffer
	args := []string{"-config", cfg, "-shape", "surface", "-width", "200", "-height", "100", "-o", out}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var root struct{ XMLName xml.Name }
	if err := xml.Unmarshal(data, &root); err != nil {
		t.Fatalf("invalid SVG: %v", err)
	}
	if !strings.Contains(stdout.String(), "1 quads") {
		t.Errorf("stdout = %q, want the flat default surface as 1 quad", stdout.String())
	}
}

func TestRunSceneOverride(t *testing.T) {
	cfg := writeProject(t, "(curve (pt 0 0))")
	override := filepath.Join(t.TempDir(), "ok.bez")
	if err := os.WriteFile(override, []byte("(sampling :step 0.5)"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "frame.png")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfg, "-scene", override, "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	good := writeProject(t, "(sampling :step 0.1)")
	bad := writeProject(t, "(curve (pt 0 0))")
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"-config", good, "-o", filepath.Join(dir, "x.gif")}, "unsupported output format"},
		{"bad shape", []string{"-config", good, "-shape", "torus", "-o", filepath.Join(dir, "x.png")}, "unknown shape"},
		{"script error", []string{"-config", bad, "-o", filepath.Join(dir, "x.png")}, "at least 2 points"},
		{"missing config", []string{"-config", filepath.Join(dir, "none.yaml")}, "failed to read"},
		{"missing scene", []string{"-config", good, "-scene", filepath.Join(dir, "none.bez")}, "failed to read scene script"},
		{"negative size", []string{"-width", "-1"}, "negative"},
		{"extra args", []string{"frame.png"}, "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-h"}, &stdout, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("run(-h) error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "-shape") {
		t.Errorf("usage does not list -shape:\n%s", stderr.String())
	}
}
