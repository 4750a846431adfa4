package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/bezel/pkg/tessellate"
)

// Shape selects which of the two objects is drawn.
type Shape int

const (
	ShapeCurve   Shape = iota // single Bézier curve
	ShapeSurface              // tensor-product Bézier surface
)

func (s Shape) String() string {
	switch s {
	case ShapeCurve:
		return "curve"
	case ShapeSurface:
		return "surface"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape accepts "curve" or "surface", case-insensitively.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "curve":
		return ShapeCurve, nil
	case "surface":
		return ShapeSurface, nil
	default:
		return 0, fmt.Errorf("unknown shape %q (want curve or surface)", name)
	}
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Sampling step limits for the uniform sweep.
const (
	MinStep     = 0.0005
	MaxStep     = 1.0
	DefaultStep = 0.05

	// MinSurfaceStep is the step at or below which the surface sweep is
	// skipped; a finer lattice would be step⁻² points.
	MinSurfaceStep = 0.005
)

// Settings are the per-frame toggles and parameters.
type Settings struct {
	Tessellation tessellate.Config `json:"tessellation" yaml:"tessellation"`
	Step         float64           `json:"step" yaml:"step"`

	ShowCage   bool  `json:"showCage" yaml:"show_cage"`
	Wireframe  bool  `json:"wireframe" yaml:"wireframe"`
	Textured   bool  `json:"textured" yaml:"textured"`
	Tessellate bool  `json:"tessellate" yaml:"tessellate"`
	Evaluate   bool  `json:"evaluate" yaml:"evaluate"`
	Shape      Shape `json:"shape" yaml:"shape"`
}

// DefaultSettings returns the startup settings: tessellated curve with its
// cage, textured surface quads, no uniform sweep.
func DefaultSettings() Settings {
	return Settings{
		Tessellation: tessellate.DefaultConfig(),
		Step:         DefaultStep,
		ShowCage:     true,
		Textured:     true,
		Tessellate:   true,
		Shape:        ShapeCurve,
	}
}

// Clamped returns s with every numeric field inside its UI range.
func (s Settings) Clamped() Settings {
	s.Tessellation = s.Tessellation.Clamped()
	if math.IsNaN(s.Step) {
		s.Step = DefaultStep
	}
	s.Step = min(max(s.Step, MinStep), MaxStep)
	if s.Shape != ShapeSurface {
		s.Shape = ShapeCurve
	}
	return s
}

// QuadTexturing reports whether quads are drawn with the texture.
func (s Settings) QuadTexturing() bool {
	return s.Textured && !s.Wireframe
}
