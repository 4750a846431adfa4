// Package raster implements render.Renderer on an in-memory RGBA image
// using the draw2d rasteriser. Textured quads are mapped per triangle
// with golang.org/x/image/draw.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/bezel/pkg/render"
	"github.com/chazu/bezel/pkg/texture"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Compile-time interface check.
var _ render.Renderer = (*Canvas)(nil)

// DefaultLineWidth is the stroke width of lines and wireframe edges in
// pixels.
const DefaultLineWidth = 1.0

// Canvas rasterises draw commands into an RGBA image.
type Canvas struct {
	img  *image.RGBA
	gc   *draw2dimg.GraphicContext
	proj render.Projector

	color     render.Color
	texturing bool
	wireframe bool
	lineWidth float64

	tex *texture.Texture

	// mask holds the coverage of the textured triangle being drawn.
	mask   *image.RGBA
	maskGC *draw2dimg.GraphicContext
}

// New returns a width x height canvas that projects world coordinates
// with proj. The canvas starts transparent.
func New(width, height int, proj render.Projector) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetLineCap(draw2d.RoundCap)
	gc.SetLineJoin(draw2d.RoundJoin)
	return &Canvas{
		img:       img,
		gc:        gc,
		proj:      proj,
		color:     render.White,
		lineWidth: DefaultLineWidth,
	}
}

// SetTexture sets the image mapped onto textured quads. A nil texture
// draws textured quads with the current color.
func (c *Canvas) SetTexture(t *texture.Texture) {
	c.tex = t
}

// SetLineWidth sets the stroke width in pixels.
func (c *Canvas) SetLineWidth(w float64) {
	c.lineWidth = w
}

// Clear fills the whole canvas with bg.
func (c *Canvas) Clear(bg render.Color) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg.RGBA()), image.Point{}, xdraw.Src)
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// SetColor sets the color of subsequent primitives.
func (c *Canvas) SetColor(col render.Color) {
	c.color = col
}

// SetTexturing enables texture mapping for subsequent quads.
func (c *Canvas) SetTexturing(enabled bool) {
	c.texturing = enabled
}

// SetWireframe switches quads to triangle outlines.
func (c *Canvas) SetWireframe(enabled bool) {
	c.wireframe = enabled
}

// DrawLine strokes a segment.
func (c *Canvas) DrawLine(p0, p1 v2.Vec) {
	x0, y0 := c.proj.Project(p0)
	x1, y1 := c.proj.Project(p1)
	c.gc.SetStrokeColor(c.color.RGBA())
	c.gc.SetLineWidth(c.lineWidth)
	c.gc.BeginPath()
	c.gc.MoveTo(x0, y0)
	c.gc.LineTo(x1, y1)
	c.gc.Stroke()
}

// DrawPoint fills a size x size pixel square centred on p.
func (c *Canvas) DrawPoint(p v2.Vec, size float64) {
	x, y := c.proj.Project(p)
	h := max(size, 1) / 2
	c.gc.SetFillColor(c.color.RGBA())
	c.gc.BeginPath()
	draw2dkit.Rectangle(c.gc, x-h, y-h, x+h, y+h)
	c.gc.Fill()
}

// DrawQuad draws the two triangles of a quad. With texturing enabled and
// uv present, the texture is mapped onto each triangle.
func (c *Canvas) DrawQuad(corners [4]v2.Vec, uv *[4]v2.Vec) {
	tris := render.Triangles(corners)
	if c.wireframe {
		for _, tri := range tris {
			c.strokeTriangle(tri)
		}
		return
	}
	if c.texturing && uv != nil && c.tex != nil {
		uvTris := render.Triangles(*uv)
		for i, tri := range tris {
			c.texturedTriangle(tri, uvTris[i])
		}
		return
	}
	for _, tri := range tris {
		c.fillTriangle(tri, c.color.RGBA())
	}
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("raster: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("raster: create file: %w", err)
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (c *Canvas) trianglePath(gc *draw2dimg.GraphicContext, tri [3]v2.Vec) {
	gc.BeginPath()
	for i, p := range tri {
		x, y := c.proj.Project(p)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Close()
}

func (c *Canvas) fillTriangle(tri [3]v2.Vec, col color.Color) {
	c.gc.SetFillColor(col)
	c.trianglePath(c.gc, tri)
	c.gc.Fill()
}

func (c *Canvas) strokeTriangle(tri [3]v2.Vec) {
	c.gc.SetStrokeColor(c.color.RGBA())
	c.gc.SetLineWidth(c.lineWidth)
	c.trianglePath(c.gc, tri)
	c.gc.Stroke()
}

// texturedTriangle maps the texture triangle uv onto the screen triangle
// tri. The screen triangle is rasterised into a coverage mask, then the
// texture is drawn through the mask with the affine map that takes the
// texel triangle onto the screen triangle.
func (c *Canvas) texturedTriangle(tri, uv [3]v2.Vec) {
	w, h := float64(c.tex.Width()), float64(c.tex.Height())
	var src, dst [3]v2.Vec
	for i := range tri {
		src[i] = v2.Vec{X: uv[i].X * w, Y: uv[i].Y * h}
		x, y := c.proj.Project(tri[i])
		dst[i] = v2.Vec{X: x, Y: y}
	}

	m, ok := affine(src, dst)
	if !ok {
		mean := c.tex.Mean([2]float64{uv[0].X, uv[0].Y}, [2]float64{uv[2].X, uv[2].Y}, 2)
		c.fillTriangle(tri, mean)
		return
	}

	c.ensureMask()
	c.maskGC.SetFillColor(color.Opaque)
	c.trianglePath(c.maskGC, tri)
	c.maskGC.Fill()

	bounds := boundsOf(dst).Intersect(c.img.Bounds())
	sr := boundsOf(src).Inset(-1).Intersect(c.tex.Image().Bounds())
	xdraw.ApproxBiLinear.Transform(c.img, m, c.tex.Image(), sr, xdraw.Over, &xdraw.Options{
		DstMask: c.mask,
	})
	xdraw.Draw(c.mask, bounds, image.Transparent, image.Point{}, xdraw.Src)
}

func (c *Canvas) ensureMask() {
	if c.mask != nil {
		return
	}
	c.mask = image.NewRGBA(c.img.Bounds())
	c.maskGC = draw2dimg.NewGraphicContext(c.mask)
}

// affine returns the map taking the src triangle onto the dst triangle, or
// false when src is degenerate.
func affine(src, dst [3]v2.Vec) (f64.Aff3, bool) {
	s1, s2 := src[1].Sub(src[0]), src[2].Sub(src[0])
	d1, d2 := dst[1].Sub(dst[0]), dst[2].Sub(dst[0])
	det := s1.X*s2.Y - s2.X*s1.Y
	if det == 0 {
		return f64.Aff3{}, false
	}
	// Inverse of [s1 s2].
	i00, i01 := s2.Y/det, -s2.X/det
	i10, i11 := -s1.Y/det, s1.X/det

	a00 := d1.X*i00 + d2.X*i10
	a01 := d1.X*i01 + d2.X*i11
	a10 := d1.Y*i00 + d2.Y*i10
	a11 := d1.Y*i01 + d2.Y*i11
	return f64.Aff3{
		a00, a01, dst[0].X - a00*src[0].X - a01*src[0].Y,
		a10, a11, dst[0].Y - a10*src[0].X - a11*src[0].Y,
	}, true
}

// boundsOf returns the pixel rectangle covering pts, padded by one pixel
// for anti-aliased edges.
func boundsOf(pts [3]v2.Vec) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(int(minX)-1, int(minY)-1, int(maxX)+2, int(maxY)+2)
}
