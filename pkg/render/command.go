package render

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Command is a single recorded draw or style request.
type Command interface {
	command() // marker method restricting implementations to this package
}

// Line draws a segment between two points.
type Line struct {
	P0, P1 v2.Vec
}

// Point draws a square point of Size pixels.
type Point struct {
	P    v2.Vec
	Size float64
}

// Quad draws a filled quadrilateral. UV holds per-corner texture
// coordinates and is only meaningful when HasUV is set.
type Quad struct {
	Corners [4]v2.Vec
	UV      [4]v2.Vec
	HasUV   bool
}

// SetColor changes the color of subsequent primitives.
type SetColor struct {
	Color Color
}

// SetTexturing enables or disables texture mapping of subsequent quads.
type SetTexturing struct {
	Enabled bool
}

// SetWireframe switches quads between filled and outlined triangles.
type SetWireframe struct {
	Enabled bool
}

func (Line) command()         {}
func (Point) command()        {}
func (Quad) command()         {}
func (SetColor) command()     {}
func (SetTexturing) command() {}
func (SetWireframe) command() {}

// Stats counts the primitives in a command list.
type Stats struct {
	Points    int     `json:"points"`
	Lines     int     `json:"lines"`
	Triangles int     `json:"triangles"` // two per quad
	Quads     int     `json:"quads"`
	FPS       float64 `json:"fps"`
}

// List records commands. It implements Renderer so geometry code can draw
// into it directly; Replay hands the recording to a real backend.
type List struct {
	Commands []Command
}

// Compile-time interface check.
var _ Renderer = (*List)(nil)

// SetColor records a color change.
func (l *List) SetColor(c Color) {
	l.Commands = append(l.Commands, SetColor{Color: c})
}

// SetTexturing records a texturing toggle.
func (l *List) SetTexturing(enabled bool) {
	l.Commands = append(l.Commands, SetTexturing{Enabled: enabled})
}

// SetWireframe records a polygon mode change.
func (l *List) SetWireframe(enabled bool) {
	l.Commands = append(l.Commands, SetWireframe{Enabled: enabled})
}

// DrawLine records a line.
func (l *List) DrawLine(p0, p1 v2.Vec) {
	l.Commands = append(l.Commands, Line{P0: p0, P1: p1})
}

// DrawPoint records a point.
func (l *List) DrawPoint(p v2.Vec, size float64) {
	l.Commands = append(l.Commands, Point{P: p, Size: size})
}

// DrawQuad records a quad. A nil uv records an untextured quad.
func (l *List) DrawQuad(corners [4]v2.Vec, uv *[4]v2.Vec) {
	q := Quad{Corners: corners}
	if uv != nil {
		q.UV = *uv
		q.HasUV = true
	}
	l.Commands = append(l.Commands, q)
}

// Len returns the number of recorded commands.
func (l *List) Len() int {
	return len(l.Commands)
}

// IsEmpty returns true if nothing has been recorded.
func (l *List) IsEmpty() bool {
	return len(l.Commands) == 0
}

// Reset clears the list, keeping its storage.
func (l *List) Reset() {
	clear(l.Commands)
	l.Commands = l.Commands[:0]
}

// Replay submits every recorded command to r in order.
func (l *List) Replay(r Renderer) {
	for _, c := range l.Commands {
		switch c := c.(type) {
		case Line:
			r.DrawLine(c.P0, c.P1)
		case Point:
			r.DrawPoint(c.P, c.Size)
		case Quad:
			if c.HasUV {
				uv := c.UV
				r.DrawQuad(c.Corners, &uv)
			} else {
				r.DrawQuad(c.Corners, nil)
			}
		case SetColor:
			r.SetColor(c.Color)
		case SetTexturing:
			r.SetTexturing(c.Enabled)
		case SetWireframe:
			r.SetWireframe(c.Enabled)
		}
	}
}

// Stats counts the recorded primitives.
func (l *List) Stats() Stats {
	var s Stats
	for _, c := range l.Commands {
		switch c.(type) {
		case Point:
			s.Points++
		case Line:
			s.Lines++
		case Quad:
			s.Quads++
			s.Triangles += 2
		}
	}
	return s
}

// Lines returns the recorded line commands in order.
func (l *List) Lines() []Line {
	return collect[Line](l.Commands)
}

// Quads returns the recorded quad commands in order.
func (l *List) Quads() []Quad {
	return collect[Quad](l.Commands)
}

// Points returns the recorded point commands in order.
func (l *List) Points() []Point {
	return collect[Point](l.Commands)
}

func collect[T Command](cmds []Command) []T {
	var out []T
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
