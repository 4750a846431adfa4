package scene

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/chazu/bezel/pkg/bezier"
	"github.com/chazu/bezel/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	s := Default()
	if len(s.Curve) != 4 {
		t.Errorf("curve has %d points, want 4", len(s.Curve))
	}
	if s.Surface.Rows() != 3 || s.Surface.Cols() != 3 {
		t.Errorf("surface is %dx%d, want 3x3", s.Surface.Rows(), s.Surface.Cols())
	}
	if got := s.Surface[0][2]; got != (v2.Vec{X: 1, Y: 1}) {
		t.Errorf("surface[0][2] = %v, want (1, 1)", got)
	}
	want := Settings{
		Tessellation: tessellate.Config{MaxDepth: 2, Threshold: 0.1},
		Step:         0.05,
		ShowCage:     true,
		Textured:     true,
		Tessellate:   true,
		Shape:        ShapeCurve,
	}
	if diff := cmp.Diff(want, s.Settings); diff != "" {
		t.Errorf("default settings mismatch (-want +got):\n%s", diff)
	}
	if errs := Validate(s); len(errs) != 0 {
		t.Errorf("default scene invalid: %v", errs)
	}
}

func TestSwitchShape(t *testing.T) {
	s := Default()
	s.SwitchShape()
	if s.Settings.Shape != ShapeSurface {
		t.Fatalf("shape = %v, want surface", s.Settings.Shape)
	}
	s.SwitchShape()
	if s.Settings.Shape != ShapeCurve {
		t.Fatalf("shape = %v, want curve", s.Settings.Shape)
	}
}

func TestSelectionClamped(t *testing.T) {
	tests := []struct {
		name             string
		point            int
		row, col         int
		wantPoint        int
		wantRow, wantCol int
	}{
		{"in range", 2, 1, 2, 2, 1, 2},
		{"negative", -3, -1, -7, 0, 0, 0},
		{"past end", 9, 5, 3, 3, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.SelectPoint(tt.point)
			s.SelectCoord(tt.row, tt.col)
			got := s.Selection
			want := Selection{Point: tt.wantPoint, Row: tt.wantRow, Col: tt.wantCol}
			if got != want {
				t.Errorf("Selection = %+v, want %+v", got, want)
			}
		})
	}
}

func TestMovePoint(t *testing.T) {
	s := Default()
	s.SelectPoint(1)
	s.MovePoint(v2.Vec{X: 3, Y: 4})
	if got := s.Curve[1]; got != (v2.Vec{X: 3, Y: 4}) {
		t.Errorf("curve[1] = %v, want (3, 4)", got)
	}
	if got := s.Selected(); got != (v2.Vec{X: 3, Y: 4}) {
		t.Errorf("Selected() = %v, want (3, 4)", got)
	}

	s.SwitchShape()
	s.SelectCoord(1, 1)
	s.MovePoint(v2.Vec{X: 0.5, Y: 0.5})
	if got := s.Surface[1][1]; got != (v2.Vec{X: 0.5, Y: 0.5}) {
		t.Errorf("surface[1][1] = %v, want (0.5, 0.5)", got)
	}
	if got := s.Curve[1]; got != (v2.Vec{X: 3, Y: 4}) {
		t.Errorf("moving a surface point changed the curve: %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.Curve[0] = v2.Vec{X: 9, Y: 9}
	c.Surface[0][0] = v2.Vec{X: 9, Y: 9}
	if s.Curve[0] == c.Curve[0] || s.Surface[0][0] == c.Surface[0][0] {
		t.Error("Clone shares control point storage")
	}
}

func TestNearest(t *testing.T) {
	s := Default()
	row, col, d := s.Nearest(v2.Vec{X: 0.45, Y: -0.9})
	if row != 2 || col != 2 || math.Abs(d-math.Hypot(0.05, 0.1)) > 1e-12 {
		t.Errorf("curve Nearest = (%d, %d, %g), want index 2", row, col, d)
	}
	s.SwitchShape()
	row, col, _ = s.Nearest(v2.Vec{X: 0.9, Y: -0.1})
	if row != 1 || col != 2 {
		t.Errorf("surface Nearest = (%d, %d), want (1, 2)", row, col)
	}
}

func TestBounds(t *testing.T) {
	s := Default()
	want := sdf.Box2{Min: v2.Vec{X: -1.5, Y: -1}, Max: v2.Vec{X: 1, Y: 1}}
	if got := s.Bounds(); got != want {
		t.Errorf("curve Bounds() = %v, want %v", got, want)
	}
	s.SwitchShape()
	want = sdf.Box2{Min: v2.Vec{X: -1, Y: -1}, Max: v2.Vec{X: 1, Y: 1}}
	if got := s.Bounds(); got != want {
		t.Errorf("surface Bounds() = %v, want %v", got, want)
	}
}

func TestSettingsClamped(t *testing.T) {
	in := Settings{
		Tessellation: tessellate.Config{MaxDepth: 40, Threshold: -1},
		Step:         math.NaN(),
		Shape:        Shape(7),
	}
	got := in.Clamped()
	if got.Tessellation != (tessellate.Config{MaxDepth: 10, Threshold: 0}) {
		t.Errorf("Tessellation = %+v", got.Tessellation)
	}
	if got.Step != DefaultStep {
		t.Errorf("Step = %g, want %g", got.Step, DefaultStep)
	}
	if got.Shape != ShapeCurve {
		t.Errorf("Shape = %v, want curve", got.Shape)
	}
	if s := (Settings{Step: 1e-9}).Clamped().Step; s != MinStep {
		t.Errorf("tiny step clamped to %g, want %g", s, MinStep)
	}
}

func TestQuadTexturing(t *testing.T) {
	tests := []struct {
		textured, wireframe, want bool
	}{
		{true, false, true},
		{true, true, false},
		{false, false, false},
		{false, true, false},
	}
	for _, tt := range tests {
		s := Settings{Textured: tt.textured, Wireframe: tt.wireframe}
		if got := s.QuadTexturing(); got != tt.want {
			t.Errorf("QuadTexturing(textured=%v, wireframe=%v) = %v, want %v", tt.textured, tt.wireframe, got, tt.want)
		}
	}
}

func TestShapeText(t *testing.T) {
	var set Settings
	if err := json.Unmarshal([]byte(`{"shape":"Surface","step":0.1}`), &set); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if set.Shape != ShapeSurface {
		t.Errorf("Shape = %v, want surface", set.Shape)
	}
	b, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"shape":"surface"`) {
		t.Errorf("Marshal = %s", b)
	}
	if _, err := ParseShape("torus"); err == nil {
		t.Error("ParseShape(torus) should fail")
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		field  string
	}{
		{"short curve", func(s *Scene) { s.Curve = s.Curve[:1] }, "curve"},
		{"nan curve point", func(s *Scene) { s.Curve[2].X = math.NaN() }, "curve[2]"},
		{"empty surface", func(s *Scene) { s.Surface = nil }, "surface"},
		{"ragged surface", func(s *Scene) { s.Surface[1] = s.Surface[1][:2] }, "surface"},
		{"inf surface point", func(s *Scene) { s.Surface[0][1].Y = math.Inf(1) }, "surface[0][1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			res := ValidateAll(s)
			if res.OK() {
				t.Fatal("expected a blocking error")
			}
			if !hasField(res.Errors, tt.field) {
				t.Errorf("no error for %q in %v", tt.field, res.Errors)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	s := Default()
	s.Curve = bezier.Polygon{{X: 1, Y: 1}, {X: 1, Y: 1}}
	s.Surface = bezier.Grid{{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	s.Settings.Shape = ShapeSurface
	s.Settings.Tessellation.MaxDepth = 12
	s.Settings.Evaluate = true
	s.Settings.Step = 0.001

	res := ValidateAll(s)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	for _, field := range []string{"curve", "surface", "tessellation.max_depth", "step"} {
		if !hasField(res.Warnings, field) {
			t.Errorf("no warning for %q in %v", field, res.Warnings)
		}
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "step", Message: "too small", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] step: too small" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != "[error] bad" {
		t.Errorf("Error() = %q", got)
	}
}

func hasField(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
