// Command bezrender renders one frame of a bezel scene to a PNG or SVG
// file without opening a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/bezel/pkg/camera"
	"github.com/chazu/bezel/pkg/config"
	"github.com/chazu/bezel/pkg/engine"
	"github.com/chazu/bezel/pkg/frame"
	"github.com/chazu/bezel/pkg/logging"
	"github.com/chazu/bezel/pkg/render/raster"
	"github.com/chazu/bezel/pkg/render/svg"
	"github.com/chazu/bezel/pkg/scene"
	"github.com/chazu/bezel/pkg/texture"
)

// fitMargin is the relative space left around the scene.
const fitMargin = 0.15

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "bezrender: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config  string
	scene   string
	shape   string
	output  string
	width   int
	height  int
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("bezrender", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.config, "config", "", "path to "+config.FileName+" (default: ./"+config.FileName+" if present)")
	fs.StringVar(&o.scene, "scene", "", "scene script, overrides the config")
	fs.StringVar(&o.shape, "shape", "", "curve or surface, overrides the scene")
	fs.StringVar(&o.output, "o", "bezel.png", "output file, .png or .svg")
	fs.IntVar(&o.width, "width", 0, "image width (default: window width from the config)")
	fs.IntVar(&o.height, "height", 0, "image height (default: window height from the config)")
	fs.BoolVar(&o.verbose, "v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if o.width < 0 || o.height < 0 {
		return nil, fmt.Errorf("image size %dx%d is negative", o.width, o.height)
	}
	return &o, nil
}

func loadConfig(path string) (*config.Resolved, error) {
	if path == "" {
		return config.Resolve(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(filepath.Dir(path))
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logging.SetLogger(logging.NewText(stderr, o.verbose))

	cfg, err := loadConfig(o.config)
	if err != nil {
		return err
	}

	s, err := loadScene(cfg, o.scene)
	if err != nil {
		return err
	}
	if o.shape != "" {
		shape, err := scene.ParseShape(o.shape)
		if err != nil {
			return err
		}
		s.Settings.Shape = shape
	}

	width := o.width
	if width == 0 {
		width = cfg.Width
	}
	height := o.height
	if height == 0 {
		height = cfg.Height
	}

	var tex *texture.Texture
	if cfg.Texture != "" {
		tex, err = texture.Load(cfg.Texture)
		if err != nil {
			logging.Logger().Warn("failed to load texture", "path", cfg.Texture, "err", err)
			tex = nil
		}
	}

	cam := camera.NewController(float64(width) / float64(height))
	cam.Fit(s.Bounds(), fitMargin)
	vp := cam.Viewport(width, height)
	f := frame.Build(s, frame.View{Zoom: cam.ZoomLevel()})

	switch ext := strings.ToLower(filepath.Ext(o.output)); ext {
	case ".png":
		canvas := raster.New(width, height, vp)
		canvas.SetTexture(tex)
		canvas.Clear(cfg.Background)
		f.List.Replay(canvas)
		if err := canvas.SavePNG(o.output); err != nil {
			return err
		}
	case ".svg":
		if err := writeSVG(o.output, width, height, vp, tex, cfg, f); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q (want .png or .svg)", ext)
	}

	fmt.Fprintf(stdout, "%s: %dx%d, %d points, %d lines, %d quads\n",
		o.output, width, height, f.Stats.Points, f.Stats.Lines, f.Stats.Quads)
	return nil
}

// loadScene starts from the default scene with the configured settings and
// runs the scene script, if any. Script errors are fatal here.
func loadScene(cfg *config.Resolved, override string) (*scene.Scene, error) {
	base := scene.Default()
	base.Settings = cfg.Settings

	path := cfg.Script
	if override != "" {
		path = override
	}
	if path == "" {
		return base, nil
	}

	res, err := engine.NewEngine().RunFile(base, path)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	for _, w := range res.Warnings {
		logging.Logger().Warn("scene warning", "field", w.Field, "msg", w.Message)
	}
	return res.Scene, nil
}

func writeSVG(path string, width, height int, vp camera.Viewport, tex *texture.Texture, cfg *config.Resolved, f *frame.Frame) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	canvas := svg.New(out, width, height, vp)
	canvas.SetTexture(tex)
	canvas.Clear(cfg.Background)
	f.List.Replay(canvas)
	canvas.End()
	return nil
}
