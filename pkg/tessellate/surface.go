package tessellate

import (
	"github.com/chazu/bezel/pkg/bezier"
	"github.com/chazu/bezel/pkg/render"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SurfaceOptions control styling of the surface traversal.
type SurfaceOptions struct {
	// Samples draws the exact and bilinear sample points of every
	// subdivided patch, for inspecting the error measure.
	Samples     bool
	SampleSize  float64
	SampleColor render.Color

	// QuadColor and Textured are restored after samples are drawn.
	QuadColor render.Color
	Textured  bool
}

// patch is a parameter rectangle with its corners on the true surface, in
// the winding (s0,t0), (s0,t1), (s1,t1), (s1,t0).
type patch struct {
	s0, s1, t0, t1 float64
	c              [4]v2.Vec
}

// uv returns the texture coordinates of the corners. u runs along t and v
// along s.
func (p *patch) uv() [4]v2.Vec {
	return [4]v2.Vec{
		{X: p.t0, Y: p.s0},
		{X: p.t1, Y: p.s0},
		{X: p.t1, Y: p.s1},
		{X: p.t0, Y: p.s1},
	}
}

// samples holds the five probe points of a patch.
type samples struct {
	bottom, top, left, right, center v2.Vec
}

type surfaceTessellator struct {
	cfg   Config
	grid  bezier.Grid
	out   render.Renderer
	opts  SurfaceOptions
	trace Trace
}

// Surface tessellates the surface with the given control grid into quads
// drawn into out. Every quad carries the (t, s) parameters of its corners
// as texture coordinates. The grid must be rectangular and non-empty.
func Surface(cfg Config, grid bezier.Grid, out render.Renderer, opts SurfaceOptions) Trace {
	st := &surfaceTessellator{cfg: cfg, grid: grid, out: out, opts: opts}
	st.tessellate(patch{s0: 0, s1: 1, t0: 0, t1: 1, c: grid.Corners()}, 0)
	return st.trace
}

func (st *surfaceTessellator) emit(p *patch) {
	uv := p.uv()
	st.out.DrawQuad(p.c, &uv)
}

func (st *surfaceTessellator) tessellate(p patch, depth int) {
	st.trace.visit(depth)
	if depth >= st.cfg.MaxDepth {
		st.emit(&p)
		return
	}

	sm := (p.s0 + p.s1) * 0.5
	tm := (p.t0 + p.t1) * 0.5

	exact := samples{
		bottom: bezier.EvaluateSurface(p.s0, tm, st.grid),
		top:    bezier.EvaluateSurface(p.s1, tm, st.grid),
		left:   bezier.EvaluateSurface(sm, p.t0, st.grid),
		right:  bezier.EvaluateSurface(sm, p.t1, st.grid),
		center: bezier.EvaluateSurface(sm, tm, st.grid),
	}
	flat := samples{
		bottom: bezier.Lerp(p.c[0], p.c[1], 0.5),
		top:    bezier.Lerp(p.c[3], p.c[2], 0.5),
		left:   bezier.Lerp(p.c[0], p.c[3], 0.5),
		right:  bezier.Lerp(p.c[1], p.c[2], 0.5),
	}
	flat.center = bezier.Lerp(flat.top, flat.bottom, 0.5)

	th := st.cfg.Threshold
	sEdges := exceeds(exact.left, flat.left, th) || exceeds(exact.right, flat.right, th)
	tEdges := exceeds(exact.top, flat.top, th) || exceeds(exact.bottom, flat.bottom, th)
	center := exceeds(exact.center, flat.center, th)

	switch {
	case !sEdges && !tEdges && !center:
		st.emit(&p)
	case sEdges:
		st.splitS(&p, sm, &exact, depth)
	case tEdges:
		st.splitT(&p, tm, &exact, depth)
	default:
		st.quarter(&p, sm, tm, &exact, depth)
	}

	if st.opts.Samples {
		st.drawSamples(&exact, &flat)
	}
}

// splitS halves the patch along s through the left and right edge midpoints.
func (st *surfaceTessellator) splitS(p *patch, sm float64, e *samples, depth int) {
	st.tessellate(patch{
		s0: p.s0, s1: sm, t0: p.t0, t1: p.t1,
		c: [4]v2.Vec{p.c[0], p.c[1], e.right, e.left},
	}, depth+1)
	st.tessellate(patch{
		s0: sm, s1: p.s1, t0: p.t0, t1: p.t1,
		c: [4]v2.Vec{e.left, e.right, p.c[2], p.c[3]},
	}, depth+1)
}

// splitT halves the patch along t through the bottom and top edge midpoints.
func (st *surfaceTessellator) splitT(p *patch, tm float64, e *samples, depth int) {
	st.tessellate(patch{
		s0: p.s0, s1: p.s1, t0: p.t0, t1: tm,
		c: [4]v2.Vec{p.c[0], e.bottom, e.top, p.c[3]},
	}, depth+1)
	st.tessellate(patch{
		s0: p.s0, s1: p.s1, t0: tm, t1: p.t1,
		c: [4]v2.Vec{e.bottom, p.c[1], p.c[2], e.top},
	}, depth+1)
}

// quarter splits the patch into four around its centre.
func (st *surfaceTessellator) quarter(p *patch, sm, tm float64, e *samples, depth int) {
	st.tessellate(patch{
		s0: p.s0, s1: sm, t0: p.t0, t1: tm,
		c: [4]v2.Vec{p.c[0], e.bottom, e.center, e.left},
	}, depth+1)
	st.tessellate(patch{
		s0: p.s0, s1: sm, t0: tm, t1: p.t1,
		c: [4]v2.Vec{e.bottom, p.c[1], e.right, e.center},
	}, depth+1)
	st.tessellate(patch{
		s0: sm, s1: p.s1, t0: tm, t1: p.t1,
		c: [4]v2.Vec{e.center, e.right, p.c[2], e.top},
	}, depth+1)
	st.tessellate(patch{
		s0: sm, s1: p.s1, t0: p.t0, t1: tm,
		c: [4]v2.Vec{e.left, e.center, e.top, p.c[3]},
	}, depth+1)
}

func (st *surfaceTessellator) drawSamples(exact, flat *samples) {
	st.out.SetTexturing(false)
	st.out.SetColor(st.opts.SampleColor)
	for _, s := range []*samples{exact, flat} {
		st.out.DrawPoint(s.top, st.opts.SampleSize)
		st.out.DrawPoint(s.left, st.opts.SampleSize)
		st.out.DrawPoint(s.right, st.opts.SampleSize)
		st.out.DrawPoint(s.bottom, st.opts.SampleSize)
		st.out.DrawPoint(s.center, st.opts.SampleSize)
	}
	st.out.SetColor(st.opts.QuadColor)
	st.out.SetTexturing(st.opts.Textured)
}
