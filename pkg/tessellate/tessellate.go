// Package tessellate adaptively approximates Bézier curves with line
// segments and Bézier surfaces with quads. Each node of the recursion
// compares its flat approximation against exactly evaluated samples and
// subdivides only where the deviation exceeds a threshold. Output is drawn
// into a render.Renderer, normally a render.List.
package tessellate

import (
	"math"

	"github.com/chazu/bezel/pkg/bezier"
	"github.com/chazu/bezel/pkg/render"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Limits for Config values accepted from the UI.
const (
	MinDepth     = 1
	MaxDepth     = 10
	MaxThreshold = 10.0
)

// Config controls the refinement of both tessellators.
type Config struct {
	MaxDepth  int     `json:"maxDepth" yaml:"max_depth"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// DefaultConfig returns the startup configuration.
func DefaultConfig() Config {
	return Config{MaxDepth: 2, Threshold: 0.1}
}

// Clamped returns c with MaxDepth in [MinDepth, MaxDepth] and Threshold in
// [0, MaxThreshold]. A NaN threshold becomes 0.
func (c Config) Clamped() Config {
	c.MaxDepth = min(max(c.MaxDepth, MinDepth), MaxDepth)
	if math.IsNaN(c.Threshold) {
		c.Threshold = 0
	}
	c.Threshold = min(max(c.Threshold, 0), MaxThreshold)
	return c
}

// Trace describes one traversal.
type Trace struct {
	Nodes    int // recursive calls made
	MaxDepth int // deepest call reached
}

func (tr *Trace) visit(depth int) {
	tr.Nodes++
	tr.MaxDepth = max(tr.MaxDepth, depth)
}

// exceeds reports whether the exact point deviates from its approximation
// by more than threshold.
func exceeds(exact, approx v2.Vec, threshold float64) bool {
	return bezier.Distance(exact, approx) > threshold
}

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

// chordFractions are the relative positions sampled along each chord.
var chordFractions = [3]float64{0.25, 0.5, 0.75}

type curveTessellator struct {
	cfg    Config
	points bezier.Polygon
	out    render.Renderer
	trace  Trace
}

// Curve tessellates the curve with the given control polygon into line
// segments drawn into out. The polygon needs at least two points.
func Curve(cfg Config, points bezier.Polygon, out render.Renderer) Trace {
	ct := &curveTessellator{cfg: cfg, points: points, out: out}
	ct.tessellate(0, 1, points.First(), points.Last(), 0)
	return ct.trace
}

// tessellate emits the chord p0-p1 of [t0, t1] or splits the interval at
// its midpoint. The children share the exactly evaluated midpoint, so the
// polyline has no cracks.
func (ct *curveTessellator) tessellate(t0, t1 float64, p0, p1 v2.Vec, depth int) {
	ct.trace.visit(depth)
	if depth >= ct.cfg.MaxDepth {
		ct.out.DrawLine(p0, p1)
		return
	}

	var exact [3]v2.Vec
	split := false
	for i, f := range chordFractions {
		exact[i] = bezier.EvaluateCurve(t0+(t1-t0)*f, ct.points)
		if exceeds(exact[i], bezier.Lerp(p0, p1, f), ct.cfg.Threshold) {
			split = true
		}
	}
	if !split {
		ct.out.DrawLine(p0, p1)
		return
	}

	tMid, pMid := t0+(t1-t0)*0.5, exact[1]
	ct.tessellate(t0, tMid, p0, pMid, depth+1)
	ct.tessellate(tMid, t1, pMid, p1, depth+1)
}
