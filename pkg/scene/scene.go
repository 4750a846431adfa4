// Package scene holds the editable state of the visualiser: the curve and
// surface control points, the current selection and the frame settings.
// Control points keep their layout for the lifetime of a scene; they are
// moved but never added or removed.
package scene

import (
	"github.com/chazu/bezel/pkg/bezier"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Selection identifies the control point being edited for each shape.
type Selection struct {
	Point int `json:"point"` // curve point index
	Row   int `json:"row"`   // surface grid row
	Col   int `json:"col"`   // surface grid column
}

// Scene is the complete visualiser state.
type Scene struct {
	Curve     bezier.Polygon `json:"curve"`
	Surface   bezier.Grid    `json:"surface"`
	Settings  Settings       `json:"settings"`
	Selection Selection      `json:"selection"`
}

// DefaultCurve returns the startup cubic.
func DefaultCurve() bezier.Polygon {
	return bezier.Polygon{
		{X: -1.5, Y: 0.5},
		{X: -0.5, Y: 1},
		{X: 0.5, Y: -1},
		{X: 1, Y: 0},
	}
}

// DefaultSurface returns the startup 3x3 grid: rows at y = 1, 0, -1 and
// columns at x = -1, 0, 1.
func DefaultSurface() bezier.Grid {
	g := make(bezier.Grid, 3)
	for i := range g {
		y := 1 - float64(i)
		g[i] = []v2.Vec{{X: -1, Y: y}, {X: 0, Y: y}, {X: 1, Y: y}}
	}
	return g
}

// Default returns the startup scene.
func Default() *Scene {
	return &Scene{
		Curve:    DefaultCurve(),
		Surface:  DefaultSurface(),
		Settings: DefaultSettings(),
	}
}

// Clone returns a deep copy of s.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Curve = s.Curve.Clone()
	c.Surface = s.Surface.Clone()
	return &c
}

// SwitchShape toggles between curve and surface.
func (s *Scene) SwitchShape() {
	if s.Settings.Shape == ShapeCurve {
		s.Settings.Shape = ShapeSurface
	} else {
		s.Settings.Shape = ShapeCurve
	}
}

// SelectPoint selects a curve control point, clamped to the polygon.
func (s *Scene) SelectPoint(i int) {
	s.Selection.Point = clampIndex(i, len(s.Curve))
}

// SelectCoord selects a surface control point, clamped to the grid.
func (s *Scene) SelectCoord(row, col int) {
	s.Selection.Row = clampIndex(row, s.Surface.Rows())
	s.Selection.Col = clampIndex(col, s.Surface.Cols())
}

// Selected returns the position of the selected point of the active shape.
func (s *Scene) Selected() v2.Vec {
	if s.Settings.Shape == ShapeSurface {
		return s.Surface[s.Selection.Row][s.Selection.Col]
	}
	return s.Curve[s.Selection.Point]
}

// MovePoint moves the selected point of the active shape to p.
func (s *Scene) MovePoint(p v2.Vec) {
	if s.Settings.Shape == ShapeSurface {
		s.Surface[s.Selection.Row][s.Selection.Col] = p
		return
	}
	s.Curve[s.Selection.Point] = p
}

// Nearest returns the control point of the active shape closest to p
// and its distance. For the curve, row and col are both the point index.
func (s *Scene) Nearest(p v2.Vec) (row, col int, dist float64) {
	dist = -1
	if s.Settings.Shape == ShapeSurface {
		for i, r := range s.Surface {
			for j, q := range r {
				if d := bezier.Distance(p, q); dist < 0 || d < dist {
					row, col, dist = i, j, d
				}
			}
		}
		return row, col, dist
	}
	for i, q := range s.Curve {
		if d := bezier.Distance(p, q); dist < 0 || d < dist {
			row, col, dist = i, i, d
		}
	}
	return row, col, dist
}

// Bounds returns the box around the control points of the active shape.
func (s *Scene) Bounds() sdf.Box2 {
	if s.Settings.Shape == ShapeSurface {
		var pts []v2.Vec
		for _, r := range s.Surface {
			pts = append(pts, r...)
		}
		return boundsOf(pts)
	}
	return boundsOf(s.Curve)
}

func boundsOf(pts []v2.Vec) sdf.Box2 {
	if len(pts) == 0 {
		return sdf.Box2{}
	}
	b := sdf.Box2{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
