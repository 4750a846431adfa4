// Package config loads the optional bezel.yaml file and resolves it into
// the startup settings of the visualiser.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/scene"
	"github.com/chazu/bezel/pkg/tessellate"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "bezel.yaml"

// Defaults for values the file leaves unset.
const (
	DefaultTitle      = "bezel"
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultTexture    = "assets/image.png"
	DefaultBackground = "#1a1a1a"

	minDimension = 64
	maxDimension = 8192
)

// ErrInvalid is returned for values that cannot be resolved.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the optional bezel.yaml configuration. Pointer fields
// distinguish "unset" from the zero value.
type Config struct {
	Window       WindowConfig       `yaml:"window"`
	Tessellation TessellationConfig `yaml:"tessellation"`
	Sampling     SamplingConfig     `yaml:"sampling"`
	View         ViewConfig         `yaml:"view"`
	Scene        SceneConfig        `yaml:"scene"`
	Texture      TextureConfig      `yaml:"texture"`
	Render       RenderConfig       `yaml:"render"`
}

// WindowConfig sizes the desktop window and the default CLI output.
type WindowConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// TessellationConfig contains the refinement parameters.
type TessellationConfig struct {
	MaxDepth  *int     `yaml:"max_depth,omitempty"`
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// SamplingConfig contains the uniform sweep step.
type SamplingConfig struct {
	Step *float64 `yaml:"step,omitempty"`
}

// ViewConfig contains the display toggles.
type ViewConfig struct {
	Shape      string `yaml:"shape,omitempty"`
	ShowCage   *bool  `yaml:"show_cage,omitempty"`
	Wireframe  *bool  `yaml:"wireframe,omitempty"`
	Textured   *bool  `yaml:"textured,omitempty"`
	Tessellate *bool  `yaml:"tessellate,omitempty"`
	Evaluate   *bool  `yaml:"evaluate,omitempty"`
}

// SceneConfig points at a scene script.
type SceneConfig struct {
	Script string `yaml:"script,omitempty"`
}

// TextureConfig points at the surface texture image.
type TextureConfig struct {
	Path string `yaml:"path,omitempty"`
}

// RenderConfig contains backend settings.
type RenderConfig struct {
	Background string `yaml:"background,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	Title      string
	Width      int
	Height     int
	Settings   scene.Settings
	Script     string // empty for the built-in scene
	Texture    string
	Background render.Color
}

// LoadOptional reads bezel.yaml from dir if present. A missing file yields
// an empty Config.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Resolve loads bezel.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve applies defaults, clamps numeric values to their UI ranges and
// makes relative paths relative to root.
func (c *Config) Resolve(root string) (*Resolved, error) {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return nil, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}

	set := scene.DefaultSettings()
	set.Tessellation = tessellate.Config{
		MaxDepth:  lo.Clamp(lo.FromPtrOr(c.Tessellation.MaxDepth, set.Tessellation.MaxDepth), tessellate.MinDepth, tessellate.MaxDepth),
		Threshold: lo.Clamp(lo.FromPtrOr(c.Tessellation.Threshold, set.Tessellation.Threshold), 0, tessellate.MaxThreshold),
	}
	set.Step = lo.Clamp(lo.FromPtrOr(c.Sampling.Step, set.Step), scene.MinStep, scene.MaxStep)
	set.ShowCage = lo.FromPtrOr(c.View.ShowCage, set.ShowCage)
	set.Wireframe = lo.FromPtrOr(c.View.Wireframe, set.Wireframe)
	set.Textured = lo.FromPtrOr(c.View.Textured, set.Textured)
	set.Tessellate = lo.FromPtrOr(c.View.Tessellate, set.Tessellate)
	set.Evaluate = lo.FromPtrOr(c.View.Evaluate, set.Evaluate)
	if name := strings.TrimSpace(c.View.Shape); name != "" {
		shape, err := scene.ParseShape(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		set.Shape = shape
	}

	bg, err := render.ParseHex(lo.Ternary(c.Render.Background == "", DefaultBackground, c.Render.Background))
	if err != nil {
		return nil, fmt.Errorf("%w: render.background: %v", ErrInvalid, err)
	}

	title, _ := lo.Coalesce(strings.TrimSpace(c.Window.Title), DefaultTitle)
	texture, _ := lo.Coalesce(strings.TrimSpace(c.Texture.Path), DefaultTexture)

	return &Resolved{
		Root:       root,
		Title:      title,
		Width:      lo.Clamp(lo.Ternary(c.Window.Width == 0, DefaultWidth, c.Window.Width), minDimension, maxDimension),
		Height:     lo.Clamp(lo.Ternary(c.Window.Height == 0, DefaultHeight, c.Window.Height), minDimension, maxDimension),
		Settings:   set,
		Script:     resolvePath(root, c.Scene.Script),
		Texture:    resolvePath(root, texture),
		Background: bg,
	}, nil
}

func resolvePath(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
