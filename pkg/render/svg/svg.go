// Package svg implements render.Renderer as an SVG document writer using
// github.com/ajstarks/svgo. Coordinates are written in sub-pixel units
// inside a viewBox so that integer output keeps geometric precision.
package svg

import (
	"fmt"
	"io"
	"math"

	svgo "github.com/ajstarks/svgo"
	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/texture"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ render.Renderer = (*Canvas)(nil)

// Subpixel is the number of viewBox units per pixel.
const Subpixel = 16

// Canvas writes draw commands as SVG elements.
type Canvas struct {
	doc           *svgo.SVG
	proj          render.Projector
	width, height int

	color     render.Color
	texturing bool
	wireframe bool
	lineWidth float64

	tex *texture.Texture
}

// New starts a width x height SVG document on w.
func New(w io.Writer, width, height int, proj render.Projector) *Canvas {
	doc := svgo.New(w)
	doc.Startview(width, height, 0, 0, width*Subpixel, height*Subpixel)
	return &Canvas{
		doc:       doc,
		proj:      proj,
		width:     width,
		height:    height,
		color:     render.White,
		lineWidth: 1,
	}
}

// SetTexture sets the image used to shade textured quads. SVG output fills
// each textured quad with the mean texture color over its coordinates.
func (c *Canvas) SetTexture(t *texture.Texture) {
	c.tex = t
}

// SetLineWidth sets the stroke width in pixels.
func (c *Canvas) SetLineWidth(w float64) {
	c.lineWidth = w
}

// Clear paints a background rectangle over the whole document.
func (c *Canvas) Clear(bg render.Color) {
	c.doc.Rect(0, 0, c.width*Subpixel, c.height*Subpixel, fill(bg))
}

// End closes the document.
func (c *Canvas) End() {
	c.doc.End()
}

// SetColor sets the color of subsequent primitives.
func (c *Canvas) SetColor(col render.Color) {
	c.color = col
}

// SetTexturing enables texture shading for subsequent quads.
func (c *Canvas) SetTexturing(enabled bool) {
	c.texturing = enabled
}

// SetWireframe switches quads to triangle outlines.
func (c *Canvas) SetWireframe(enabled bool) {
	c.wireframe = enabled
}

// DrawLine writes a <line>.
func (c *Canvas) DrawLine(p0, p1 v2.Vec) {
	x0, y0 := c.project(p0)
	x1, y1 := c.project(p1)
	c.doc.Line(x0, y0, x1, y1, c.stroke())
}

// DrawPoint writes a size x size <rect> centred on p.
func (c *Canvas) DrawPoint(p v2.Vec, size float64) {
	x, y := c.project(p)
	s := units(max(size, 1))
	c.doc.Rect(x-s/2, y-s/2, s, s, fill(c.color))
}

// DrawQuad writes the two triangles of a quad as <polygon> elements.
func (c *Canvas) DrawQuad(corners [4]v2.Vec, uv *[4]v2.Vec) {
	style := fill(c.color)
	switch {
	case c.wireframe:
		style = c.stroke() + ";fill:none"
	case c.texturing && uv != nil && c.tex != nil:
		mean := c.tex.Mean([2]float64{uv[0].X, uv[0].Y}, [2]float64{uv[2].X, uv[2].Y}, 4)
		style = fill(render.Color{
			R: float64(mean.R) / 255,
			G: float64(mean.G) / 255,
			B: float64(mean.B) / 255,
			A: float64(mean.A) / 255,
		})
	}
	for _, tri := range render.Triangles(corners) {
		var xs, ys [3]int
		for i, p := range tri {
			xs[i], ys[i] = c.project(p)
		}
		c.doc.Polygon(xs[:], ys[:], style)
	}
}

func (c *Canvas) project(p v2.Vec) (int, int) {
	x, y := c.proj.Project(p)
	return units(x), units(y)
}

func (c *Canvas) stroke() string {
	return fmt.Sprintf("stroke:%s;stroke-opacity:%.3g;stroke-width:%d;stroke-linecap:round",
		c.color.Hex(), c.color.A, units(c.lineWidth))
}

func fill(col render.Color) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%.3g;stroke:none", col.Hex(), col.A)
}

// units converts pixels to viewBox units.
func units(px float64) int {
	return int(math.Round(px * Subpixel))
}
