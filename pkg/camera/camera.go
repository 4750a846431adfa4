// Package camera implements an orthographic 2D camera controller: an
// aspect-ratio-correct view of the plane that can be zoomed and panned,
// and that maps world coordinates to pixels for the renderer backends.
package camera

import (
	"math"
	"time"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

const (
	// DefaultAspect is the startup aspect ratio.
	DefaultAspect = 16.0 / 9.0

	// MinZoom bounds how far the camera can zoom in.
	MinZoom = 0.25

	// ZoomStep is the zoom change per scroll notch.
	ZoomStep = 0.25
)

// Controller is an orthographic camera. At zoom level 1 it shows
// [-aspect, aspect] x [-1, 1] around its position.
type Controller struct {
	aspect   float64
	zoom     float64
	position v2.Vec
}

// NewController returns a camera at the origin with zoom level 1.
// A non-positive aspect ratio falls back to DefaultAspect.
func NewController(aspect float64) *Controller {
	if !(aspect > 0) {
		aspect = DefaultAspect
	}
	return &Controller{aspect: aspect, zoom: 1}
}

// ZoomLevel returns the half height of the visible region.
func (c *Controller) ZoomLevel() float64 {
	return c.zoom
}

// SetZoomLevel sets the zoom level, clamped to MinZoom.
func (c *Controller) SetZoomLevel(z float64) {
	if math.IsNaN(z) {
		return
	}
	c.zoom = math.Max(z, MinZoom)
}

// Aspect returns the width/height ratio of the view.
func (c *Controller) Aspect() float64 {
	return c.aspect
}

// Position returns the centre of the view.
func (c *Controller) Position() v2.Vec {
	return c.position
}

// SetPosition moves the centre of the view.
func (c *Controller) SetPosition(p v2.Vec) {
	c.position = p
}

// Scroll zooms by offset notches; positive offsets zoom in.
func (c *Controller) Scroll(offset float64) {
	c.SetZoomLevel(c.zoom - offset*ZoomStep)
}

// Resize adapts the aspect ratio to a new framebuffer size.
func (c *Controller) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float64(width) / float64(height)
}

// Move translates the view along dir for dt. Speed scales with the zoom
// level, so panning feels the same at every magnification.
func (c *Controller) Move(dir v2.Vec, dt time.Duration) {
	c.position = c.position.Add(dir.MulScalar(c.zoom * dt.Seconds()))
}

// Pan translates the view by a world-space delta.
func (c *Controller) Pan(delta v2.Vec) {
	c.position = c.position.Add(delta)
}

// Bounds returns the visible region of the plane.
func (c *Controller) Bounds() sdf.Box2 {
	half := v2.Vec{X: c.aspect * c.zoom, Y: c.zoom}
	return sdf.Box2{
		Min: c.position.Sub(half),
		Max: c.position.Add(half),
	}
}

// Fit centres the view on b and zooms so that b plus a relative margin is
// visible at the current aspect ratio.
func (c *Controller) Fit(b sdf.Box2, margin float64) {
	size := b.Max.Sub(b.Min)
	c.position = b.Min.Add(size.MulScalar(0.5))
	half := math.Max(size.Y/2, size.X/(2*c.aspect)) * (1 + margin)
	c.SetZoomLevel(half)
}

// Viewport returns the projection of the current view onto a framebuffer
// of the given size.
func (c *Controller) Viewport(width, height int) Viewport {
	return Viewport{Bounds: c.Bounds(), Width: width, Height: height}
}

// ToPixel projects p onto a width x height framebuffer.
func (c *Controller) ToPixel(p v2.Vec, width, height int) (x, y float64) {
	return c.Viewport(width, height).Project(p)
}

// Viewport maps a world region onto a pixel grid with y pointing down.
type Viewport struct {
	Bounds        sdf.Box2
	Width, Height int
}

// Project returns the pixel coordinates of world point p.
func (v Viewport) Project(p v2.Vec) (x, y float64) {
	size := v.Bounds.Max.Sub(v.Bounds.Min)
	x = (p.X - v.Bounds.Min.X) / size.X * float64(v.Width)
	y = (v.Bounds.Max.Y - p.Y) / size.Y * float64(v.Height)
	return x, y
}

// Unproject returns the world point under pixel (x, y).
func (v Viewport) Unproject(x, y float64) v2.Vec {
	size := v.Bounds.Max.Sub(v.Bounds.Min)
	return v2.Vec{
		X: v.Bounds.Min.X + x/float64(v.Width)*size.X,
		Y: v.Bounds.Max.Y - y/float64(v.Height)*size.Y,
	}
}

// PixelSize returns the world-space size of one pixel along x.
func (v Viewport) PixelSize() float64 {
	return (v.Bounds.Max.X - v.Bounds.Min.X) / float64(v.Width)
}
