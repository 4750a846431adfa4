package bezier

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// stackPoints is the control point count up to which evaluation needs no
// heap allocation.
const stackPoints = 16

// Lerp returns the point a fraction t of the way from a to b.
func Lerp(a, b v2.Vec, t float64) v2.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b v2.Vec) float64 {
	return b.Sub(a).Length()
}

// EvaluateCurve returns the point at parameter t on the Bézier curve with
// the given control points. The control points are not modified.
// It panics if points is empty.
func EvaluateCurve(t float64, points []v2.Vec) v2.Vec {
	if len(points) == 0 {
		panic("bezier: EvaluateCurve with no control points")
	}
	var buf [stackPoints]v2.Vec
	scratch := append(buf[:0], points...)
	return collapse(t, scratch)
}

// collapse runs De Casteljau in place over pts and returns the single
// remaining point. The contents of pts are destroyed.
func collapse(t float64, pts []v2.Vec) v2.Vec {
	for n := len(pts); n > 1; n-- {
		for i := 0; i < n-1; i++ {
			pts[i] = Lerp(pts[i], pts[i+1], t)
		}
	}
	return pts[0]
}

// EvaluateSurface returns the point at (s, t) on the tensor-product Bézier
// surface defined by grid. Every row is evaluated at t, the resulting column
// is reversed, and that column is evaluated at s. The reversal fixes the
// corner convention: (0, 0) maps to grid[last][0] and (1, 1) to grid[0][last].
// It panics if grid or any row is empty.
func EvaluateSurface(s, t float64, grid [][]v2.Vec) v2.Vec {
	rows := len(grid)
	if rows == 0 {
		panic("bezier: EvaluateSurface with an empty grid")
	}
	var buf [stackPoints]v2.Vec
	column := buf[:0]
	if rows > stackPoints {
		column = make([]v2.Vec, 0, rows)
	}
	for i := rows - 1; i >= 0; i-- {
		column = append(column, EvaluateCurve(t, grid[i]))
	}
	return collapse(s, column)
}
