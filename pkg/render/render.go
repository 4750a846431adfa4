// Package render defines the abstract renderer interface and the draw
// command values produced by geometry generation. Backends (raster, svg)
// rasterise commands behind this interface, which allows swapping output
// targets without changing the tessellation code.
package render

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// QuadIndices is the triangulation of a quad's four corners. Every backend
// splits quads into the triangles (0,1,2) and (2,3,0).
var QuadIndices = [6]int{0, 1, 2, 2, 3, 0}

// Renderer is the abstract draw target. Style setters apply to every
// primitive drawn after them.
type Renderer interface {
	// Style
	SetColor(c Color)
	SetTexturing(enabled bool)
	SetWireframe(enabled bool)

	// Primitives, in world coordinates.
	DrawLine(p0, p1 v2.Vec)
	DrawPoint(p v2.Vec, size float64) // size in pixels
	DrawQuad(corners [4]v2.Vec, uv *[4]v2.Vec)
}

// Projector maps world coordinates to pixel coordinates.
type Projector interface {
	Project(p v2.Vec) (x, y float64)
}

// Triangles splits a quad into its two triangles following QuadIndices.
func Triangles(q [4]v2.Vec) [2][3]v2.Vec {
	return [2][3]v2.Vec{
		{q[QuadIndices[0]], q[QuadIndices[1]], q[QuadIndices[2]]},
		{q[QuadIndices[3]], q[QuadIndices[4]], q[QuadIndices[5]]},
	}
}
