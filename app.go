package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/chazu/bezel/pkg/camera"
	"github.com/chazu/bezel/pkg/config"
	"github.com/chazu/bezel/pkg/engine"
	"github.com/chazu/bezel/pkg/frame"
	"github.com/chazu/bezel/pkg/logging"
	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/render/raster"
	"github.com/chazu/bezel/pkg/render/svg"
	"github.com/chazu/bezel/pkg/scene"
	"github.com/chazu/bezel/pkg/texture"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Every binding locks mu; the frontend may call them from concurrent
// promises.
type App struct {
	ctx context.Context

	mu        sync.Mutex
	cfg       *config.Resolved
	engine    *engine.Engine
	start     *scene.Scene
	scene     *scene.Scene
	camera    *camera.Controller
	texture   *texture.Texture
	lastFrame time.Time
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	State    State           `json:"state"`
}

// State is the visualiser state shown in the side panel.
type State struct {
	Scene      *scene.Scene `json:"scene"`
	Zoom       float64      `json:"zoom"`
	Position   [2]float64   `json:"position"`
	HasTexture bool         `json:"hasTexture"`
}

// FrameData is one rendered frame.
type FrameData struct {
	Image string       `json:"image"` // PNG data URL
	Stats render.Stats `json:"stats"`
	Error string       `json:"error,omitempty"`
}

// ViewToggles mirrors the checkboxes of the view panel.
type ViewToggles struct {
	Shape      string `json:"shape"`
	ShowCage   bool   `json:"showCage"`
	Wireframe  bool   `json:"wireframe"`
	Textured   bool   `json:"textured"`
	Tessellate bool   `json:"tessellate"`
	Evaluate   bool   `json:"evaluate"`
}

// NewApp creates an App for the resolved configuration. A texture or scene
// script that fails to load is logged and skipped.
func NewApp(cfg *config.Resolved) *App {
	a := &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		camera: camera.NewController(float64(cfg.Width) / float64(cfg.Height)),
	}

	base := scene.Default()
	base.Settings = cfg.Settings
	if cfg.Script != "" {
		res, err := a.engine.RunFile(base, cfg.Script)
		switch {
		case err != nil:
			logging.Logger().Warn("failed to load scene", "path", cfg.Script, "err", err)
		case !res.OK():
			logging.Logger().Warn("scene script has errors", "path", cfg.Script, "errors", res.Errors)
		default:
			base = res.Scene
			logging.Logger().Info("scene loaded", "path", cfg.Script, "warnings", len(res.Warnings))
		}
	}
	a.start = base
	a.scene = base.Clone()

	if cfg.Texture != "" {
		tex, err := texture.Load(cfg.Texture)
		if err != nil {
			logging.Logger().Warn("failed to load texture", "path", cfg.Texture, "err", err)
		} else {
			a.texture = tex
		}
	}
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	logging.Logger().Info("bezel started", "shape", a.scene.Settings.Shape)
}

// Frame renders the current scene at the given framebuffer size.
func (a *App) Frame(width, height int) FrameData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if width <= 0 || height <= 0 {
		return FrameData{Error: "frame size must be positive"}
	}
	a.camera.Resize(width, height)

	now := time.Now()
	var dt time.Duration
	if !a.lastFrame.IsZero() {
		dt = now.Sub(a.lastFrame)
	}
	a.lastFrame = now

	f := frame.Build(a.scene, frame.View{Zoom: a.camera.ZoomLevel(), Timestep: dt})

	canvas := raster.New(width, height, a.camera.Viewport(width, height))
	canvas.SetTexture(a.texture)
	canvas.Clear(a.cfg.Background)
	f.List.Replay(canvas)

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		logging.Logger().Error("failed to encode frame", "err", err)
		return FrameData{Stats: f.Stats, Error: err.Error()}
	}
	return FrameData{
		Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Stats: f.Stats,
	}
}

// RenderSVG renders the current scene as an SVG document.
func (a *App) RenderSVG(width, height int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if width <= 0 || height <= 0 {
		return ""
	}
	f := frame.Build(a.scene, frame.View{Zoom: a.camera.ZoomLevel()})

	var sb strings.Builder
	canvas := svg.New(&sb, width, height, a.camera.Viewport(width, height))
	canvas.SetTexture(a.texture)
	canvas.Clear(a.cfg.Background)
	f.List.Replay(canvas)
	canvas.End()
	return sb.String()
}

// Evaluate runs a scene script on top of the startup scene. On success the
// result replaces the current scene; on failure the scene is unchanged.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res := a.engine.Run(a.start, source)
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	for _, w := range res.Warnings {
		msg := w.Message
		if w.Field != "" {
			msg = w.Field + ": " + msg
		}
		result.Warnings = append(result.Warnings, EvalErrorData{Message: msg})
	}
	if res.OK() {
		a.scene = res.Scene
	} else {
		logging.Logger().Debug("evaluation failed", "errors", len(res.Errors))
	}
	result.State = a.state()
	return result
}

// SetTessellation updates the refinement parameters.
func (a *App) SetTessellation(maxDepth int, threshold float64) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scene.Settings.Tessellation.MaxDepth = maxDepth
	a.scene.Settings.Tessellation.Threshold = threshold
	a.scene.Settings = a.scene.Settings.Clamped()
	return a.state()
}

// SetStep updates the uniform sweep step.
func (a *App) SetStep(step float64) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scene.Settings.Step = step
	a.scene.Settings = a.scene.Settings.Clamped()
	return a.state()
}

// SetView applies the view toggles. An unknown shape keeps the current one.
func (a *App) SetView(v ViewToggles) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	set := &a.scene.Settings
	if shape, err := scene.ParseShape(v.Shape); err == nil {
		set.Shape = shape
	}
	set.ShowCage = v.ShowCage
	set.Wireframe = v.Wireframe
	set.Textured = v.Textured
	set.Tessellate = v.Tessellate
	set.Evaluate = v.Evaluate
	return a.state()
}

// SwitchShape toggles between the curve and the surface.
func (a *App) SwitchShape() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scene.SwitchShape()
	return a.state()
}

// SelectPoint selects a curve point by index, or a surface point by
// row-major index, depending on the current shape.
func (a *App) SelectPoint(index int) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene.Settings.Shape == scene.ShapeSurface {
		cols := max(a.scene.Surface.Cols(), 1)
		a.scene.SelectCoord(index/cols, index%cols)
	} else {
		a.scene.SelectPoint(index)
	}
	return a.state()
}

// PickPoint selects the control point nearest to pixel (x, y) of a
// width x height frame.
func (a *App) PickPoint(x, y float64, width, height int) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if width > 0 && height > 0 {
		p := a.camera.Viewport(width, height).Unproject(x, y)
		row, col, _ := a.scene.Nearest(p)
		if a.scene.Settings.Shape == scene.ShapeSurface {
			a.scene.SelectCoord(row, col)
		} else {
			a.scene.SelectPoint(col)
		}
	}
	return a.state()
}

// MovePoint moves the selected control point under pixel (x, y) of a
// width x height frame.
func (a *App) MovePoint(x, y float64, width, height int) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if width > 0 && height > 0 {
		a.scene.MovePoint(a.camera.Viewport(width, height).Unproject(x, y))
	}
	return a.state()
}

// Zoom applies scroll notches; positive values zoom in.
func (a *App) Zoom(offset float64) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera.Scroll(offset)
	return a.state()
}

// Pan drags the view by a pixel delta of a width x height frame.
func (a *App) Pan(dx, dy float64, width, height int) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if width > 0 && height > 0 {
		ps := a.camera.Viewport(width, height).PixelSize()
		a.camera.Pan(v2.Vec{X: -dx * ps, Y: dy * ps})
	}
	return a.state()
}

// Move translates the view along (x, y) for the given number of
// milliseconds, at a speed that scales with the zoom level.
func (a *App) Move(x, y float64, millis int) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera.Move(v2.Vec{X: x, Y: y}, time.Duration(millis)*time.Millisecond)
	return a.state()
}

// Reset restores the startup scene and camera.
func (a *App) Reset() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scene = a.start.Clone()
	a.camera = camera.NewController(a.camera.Aspect())
	return a.state()
}

// State returns the current visualiser state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state()
}

// state must be called with mu held.
func (a *App) state() State {
	pos := a.camera.Position()
	return State{
		Scene:      a.scene.Clone(),
		Zoom:       a.camera.ZoomLevel(),
		Position:   [2]float64{pos.X, pos.Y},
		HasTexture: a.texture != nil,
	}
}
