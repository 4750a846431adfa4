package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/chazu/bezel/pkg/bezier"
	"github.com/chazu/bezel/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a control point returned by `pt`.
type sexpPoint struct {
	p v2.Vec
}

func (s *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", s.p.X, s.p.Y)
}
func (s *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpPolygon wraps a run of control points returned by `curve` or `row`.
type sexpPolygon struct {
	kind   string
	points bezier.Polygon
}

func (s *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(s.points))
	for i, p := range s.points {
		parts[i] = fmt.Sprintf("(pt %g %g)", p.X, p.Y)
	}
	return fmt.Sprintf("(%s %s)", s.kind, strings.Join(parts, " "))
}
func (s *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// sexpGrid wraps the control grid returned by `surface`.
type sexpGrid struct {
	grid bezier.Grid
}

func (s *sexpGrid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(surface %dx%d)", s.grid.Rows(), s.grid.Cols())
}
func (s *sexpGrid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// only returns an error naming the first keyword not in allowed.
func (a kwArgs) only(fn string, allowed ...string) error {
	for _, name := range a.order {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a finite float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		if math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
			return 0, fmt.Errorf("expected finite number, got %g", v.Val)
		}
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when they are whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && math.Abs(v.Val) < math.MaxInt32 {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from true/false.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_surface) and plain strings ("surface").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toShape converts :curve or :surface to a scene.Shape.
func toShape(s zygo.Sexp) (scene.Shape, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected shape keyword (:curve, :surface): %w", err)
	}
	return scene.ParseShape(name)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints flattens points, polygons, lists and arrays of points into one
// control polygon, in argument order.
func toPoints(args []zygo.Sexp) (bezier.Polygon, error) {
	var pts bezier.Polygon
	for i, arg := range args {
		switch v := arg.(type) {
		case *sexpPoint:
			pts = append(pts, v.p)
		case *sexpPolygon:
			pts = append(pts, v.points...)
		default:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: expected point, got %T (%s)", i+1, arg, arg.SexpString(nil))
			}
			inner, err := toPoints(items)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			pts = append(pts, inner...)
		}
	}
	return pts, nil
}

// toRows collects surface rows from polygons, lists of points or a single
// list of rows.
func toRows(args []zygo.Sexp) (bezier.Grid, error) {
	var grid bezier.Grid
	for i, arg := range args {
		switch v := arg.(type) {
		case *sexpPolygon:
			grid = append(grid, v.points.Clone())
		case *sexpGrid:
			grid = append(grid, v.grid.Clone()...)
		default:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, fmt.Errorf("row %d: expected row, got %T (%s)", i+1, arg, arg.SexpString(nil))
			}
			if len(items) > 0 {
				if _, isPoint := items[0].(*sexpPoint); !isPoint {
					inner, err := toRows(items)
					if err != nil {
						return nil, err
					}
					grid = append(grid, inner...)
					continue
				}
			}
			row, err := toPoints(items)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			grid = append(grid, row)
		}
	}
	return grid, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// sceneBuilder accumulates the effect of the builtins on the scene being
// evaluated. Later calls override earlier ones.
type sceneBuilder struct {
	scene *scene.Scene
}

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins operate on b.scene, modifying it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *sceneBuilder) {
	// -----------------------------------------------------------------------
	// (pt x y)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{p: v2.Vec{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (curve (pt ...) (pt ...) ...)
	//
	// Replaces the curve control polygon. Needs at least two points.
	// -----------------------------------------------------------------------
	env.AddFunction("curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve: %w", err)
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("curve requires at least 2 points, got %d", len(pts))
		}
		b.scene.Curve = pts
		return &sexpPolygon{kind: "curve", points: pts.Clone()}, nil
	})

	// -----------------------------------------------------------------------
	// (row (pt ...) ...)
	//
	// Builds one row of a surface grid; it has no effect on its own.
	// -----------------------------------------------------------------------
	env.AddFunction("row", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("row: %w", err)
		}
		if len(pts) == 0 {
			return zygo.SexpNull, fmt.Errorf("row requires at least 1 point")
		}
		return &sexpPolygon{kind: "row", points: pts}, nil
	})

	// -----------------------------------------------------------------------
	// (surface (row ...) (row ...) ...)
	//
	// Replaces the surface control grid. Rows must have equal length.
	// -----------------------------------------------------------------------
	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		grid, err := toRows(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface: %w", err)
		}
		if err := grid.Check(); err != nil {
			return zygo.SexpNull, fmt.Errorf("surface: %w", err)
		}
		b.scene.Surface = grid
		return &sexpGrid{grid: grid.Clone()}, nil
	})

	// -----------------------------------------------------------------------
	// (tessellation :max-depth 4 :threshold 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("tessellation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only(name, "max-depth", "threshold"); err != nil {
			return zygo.SexpNull, err
		}
		cfg := b.scene.Settings.Tessellation
		if v, ok := pa.kw["max-depth"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tessellation: max-depth: %w", err)
			}
			cfg.MaxDepth = n
		}
		if v, ok := pa.kw["threshold"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tessellation: threshold: %w", err)
			}
			cfg.Threshold = f
		}
		b.scene.Settings.Tessellation = cfg
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (sampling :step 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("sampling", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only(name, "step"); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["step"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sampling: step: %w", err)
			}
			b.scene.Settings.Step = f
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (view :shape :surface :wireframe true :cage true :textured true
	//       :tessellate true :evaluate false)
	// -----------------------------------------------------------------------
	env.AddFunction("view", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only(name, "shape", "wireframe", "cage", "textured", "tessellate", "evaluate"); err != nil {
			return zygo.SexpNull, err
		}
		st := &b.scene.Settings
		if v, ok := pa.kw["shape"]; ok {
			shape, err := toShape(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("view: shape: %w", err)
			}
			st.Shape = shape
		}
		toggles := []struct {
			key string
			dst *bool
		}{
			{"wireframe", &st.Wireframe},
			{"cage", &st.ShowCage},
			{"textured", &st.Textured},
			{"tessellate", &st.Tessellate},
			{"evaluate", &st.Evaluate},
		}
		for _, tg := range toggles {
			v, ok := pa.kw[tg.key]
			if !ok {
				continue
			}
			on, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("view: %s: %w", tg.key, err)
			}
			*tg.dst = on
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-point :index 2)  or  (select-point :row 1 :col 2)
	//
	// Sets the control point the host edits first. Registered as
	// "select_point"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("select_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("select-point", "index", "row", "col"); err != nil {
			return zygo.SexpNull, err
		}
		sel := &b.scene.Selection
		for key, dst := range map[string]*int{"index": &sel.Point, "row": &sel.Row, "col": &sel.Col} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("select-point: %s: %w", key, err)
			}
			if n < 0 {
				return zygo.SexpNull, fmt.Errorf("select-point: %s: index %d is negative", key, n)
			}
			*dst = n
		}
		return zygo.SexpNull, nil
	})
}
