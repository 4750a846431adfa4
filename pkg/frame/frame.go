// Package frame builds the draw commands of one frame from a scene. Every
// frame is a fresh traversal: nothing is cached between calls.
package frame

import (
	"time"

	"github.com/chazu/bezel/pkg/bezier"
	"github.com/chazu/bezel/pkg/logging"
	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/scene"
	"github.com/chazu/bezel/pkg/tessellate"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Point sizes in pixels at zoom level 1.
const (
	PointSize         = 5.0
	CagePointSize     = 10.0
	SelectedPointSize = 20.0
)

// View carries the camera and timing state a frame depends on.
type View struct {
	Zoom     float64       // camera zoom level; point sizes are divided by it
	Timestep time.Duration // time since the previous frame
}

// Frame is the recorded output of Build.
type Frame struct {
	List  render.List
	Stats render.Stats
	Trace tessellate.Trace
}

// Build records one frame of s. The order follows the draw order of the
// visualiser: tessellation, then the uniform sweep, then the control cage,
// so the cage is drawn on top.
func Build(s *scene.Scene, view View) *Frame {
	f := &Frame{}
	b := builder{
		scene: s,
		set:   s.Settings.Clamped(),
		out:   &zoomed{Renderer: &f.List, zoom: view.Zoom},
	}
	b.out.SetWireframe(b.set.Wireframe)
	b.out.SetTexturing(false)

	switch b.set.Shape {
	case scene.ShapeSurface:
		if b.set.Tessellate {
			f.Trace = b.tessellateSurface()
		}
		if b.set.Evaluate {
			b.sweepSurface()
		}
		if b.set.ShowCage {
			b.surfaceCage()
		}
	default:
		if b.set.Tessellate {
			f.Trace = b.tessellateCurve()
		}
		if b.set.Evaluate {
			b.sweepCurve()
		}
		if b.set.ShowCage {
			b.curveCage()
		}
	}

	f.Stats = f.List.Stats()
	f.Stats.FPS = FPS(view.Timestep)
	logging.Logger().Debug("frame built",
		"shape", b.set.Shape,
		"commands", f.List.Len(),
		"nodes", f.Trace.Nodes,
		"depth", f.Trace.MaxDepth,
		"quads", f.Stats.Quads,
		"lines", f.Stats.Lines,
	)
	return f
}

// FPS converts a frame timestep to frames per second, or 0 when the
// timestep is not positive.
func FPS(ts time.Duration) float64 {
	if ts <= 0 {
		return 0
	}
	return 1 / ts.Seconds()
}

type builder struct {
	scene *scene.Scene
	set   scene.Settings
	out   render.Renderer
}

func (b *builder) tessellateCurve() tessellate.Trace {
	b.out.SetColor(render.Cyan)
	return tessellate.Curve(b.set.Tessellation, b.scene.Curve, b.out)
}

func (b *builder) tessellateSurface() tessellate.Trace {
	color := render.White
	if b.set.Wireframe {
		color = render.Cyan
	}
	textured := b.set.QuadTexturing()

	b.out.SetColor(color)
	b.out.SetTexturing(textured)
	tr := tessellate.Surface(b.set.Tessellation, b.scene.Surface, b.out, tessellate.SurfaceOptions{
		Samples:     b.set.ShowCage,
		SampleSize:  PointSize,
		SampleColor: render.Blue,
		QuadColor:   color,
		Textured:    textured,
	})
	b.out.SetTexturing(false)
	return tr
}

func (b *builder) sweepCurve() {
	b.out.SetColor(render.Blue)
	for _, t := range Params(b.set.Step) {
		b.out.DrawPoint(bezier.EvaluateCurve(t, b.scene.Curve), PointSize)
	}
}

func (b *builder) sweepSurface() {
	b.out.SetColor(render.White)
	if b.set.Step <= scene.MinSurfaceStep {
		return
	}
	params := Params(b.set.Step)
	for _, s := range params {
		for _, t := range params {
			b.out.DrawPoint(bezier.EvaluateSurface(s, t, b.scene.Surface), PointSize)
		}
	}
}

func (b *builder) curveCage() {
	pts := b.scene.Curve
	b.out.SetColor(render.White)
	for i := 1; i < len(pts); i++ {
		b.out.DrawLine(pts[i-1], pts[i])
	}
	b.controlPoints(pts, func(i int) bool { return i == b.scene.Selection.Point })
}

func (b *builder) surfaceCage() {
	g := b.scene.Surface
	params := Params(b.set.Step)

	b.out.SetColor(render.Magenta)
	for i := 0; i < g.Rows(); i++ {
		b.isoCurve(g.Row(i), params)
	}
	for j := 0; j < g.Cols(); j++ {
		b.isoCurve(g.Column(j), params)
	}

	sel := b.scene.Selection
	for i, row := range g {
		b.controlPoints(row, func(j int) bool { return i == sel.Row && j == sel.Col })
	}
}

func (b *builder) isoCurve(p bezier.Polygon, params []float64) {
	for _, t := range params {
		b.out.DrawPoint(bezier.EvaluateCurve(t, p), PointSize)
	}
}

// controlPoints draws pts in red, except the selected one which is larger
// and yellow.
func (b *builder) controlPoints(pts []v2.Vec, selected func(int) bool) {
	b.out.SetColor(render.Red)
	for i, p := range pts {
		if !selected(i) {
			b.out.DrawPoint(p, CagePointSize)
			continue
		}
		b.out.SetColor(render.Yellow)
		b.out.DrawPoint(p, SelectedPointSize)
		b.out.SetColor(render.Red)
	}
}

// Params returns the sweep parameters 0, step, 2·step, ... up to and
// including 1 when step divides it. A non-positive step yields none.
func Params(step float64) []float64 {
	if !(step > 0) {
		return nil
	}
	const eps = 1e-9
	n := int((1+eps)/step) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = min(float64(i)*step, 1)
	}
	return out
}

// zoomed divides point sizes by the camera zoom level.
type zoomed struct {
	render.Renderer
	zoom float64
}

func (z *zoomed) DrawPoint(p v2.Vec, size float64) {
	if z.zoom > 0 {
		size /= z.zoom
	}
	z.Renderer.DrawPoint(p, size)
}
