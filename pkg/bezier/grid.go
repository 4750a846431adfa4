package bezier

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Polygon is the control polygon of a Bézier curve. Its order defines the
// direction of the curve; its degree is len-1.
type Polygon []v2.Vec

// Degree returns the polynomial degree of the curve.
func (p Polygon) Degree() int {
	return len(p) - 1
}

// First returns the first control point, where the curve starts.
func (p Polygon) First() v2.Vec {
	return p[0]
}

// Last returns the last control point, where the curve ends.
func (p Polygon) Last() v2.Vec {
	return p[len(p)-1]
}

// Eval evaluates the curve at t.
func (p Polygon) Eval(t float64) v2.Vec {
	return EvaluateCurve(t, p)
}

// Clone returns a copy of p that shares no storage with it.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	return append(Polygon(nil), p...)
}

// Grid is the control grid of a tensor-product Bézier surface, indexed
// [row][col]. All rows have the same length.
type Grid [][]v2.Vec

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns, or 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Row returns row i as a control polygon sharing storage with g.
func (g Grid) Row(i int) Polygon {
	return Polygon(g[i])
}

// Column returns a copy of column j, top row first.
func (g Grid) Column(j int) Polygon {
	col := make(Polygon, len(g))
	for i, row := range g {
		col[i] = row[j]
	}
	return col
}

// Eval evaluates the surface at (s, t).
func (g Grid) Eval(s, t float64) v2.Vec {
	return EvaluateSurface(s, t, g)
}

// Corners returns the surface corners in tessellation winding order:
// (s,t) = (0,0), (0,1), (1,1), (1,0).
func (g Grid) Corners() [4]v2.Vec {
	first, last := g[0], g[len(g)-1]
	return [4]v2.Vec{
		last[0],
		last[len(last)-1],
		first[len(first)-1],
		first[0],
	}
}

// Check reports whether g is non-empty and rectangular.
func (g Grid) Check() error {
	if len(g) == 0 {
		return fmt.Errorf("bezier: grid has no rows")
	}
	cols := len(g[0])
	if cols == 0 {
		return fmt.Errorf("bezier: grid row 0 is empty")
	}
	for i, row := range g {
		if len(row) != cols {
			return fmt.Errorf("bezier: grid row %d has %d points, want %d", i, len(row), cols)
		}
	}
	return nil
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]v2.Vec(nil), row...)
	}
	return out
}
