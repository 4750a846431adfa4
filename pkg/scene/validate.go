package scene

import (
	"fmt"
	"math"

	"github.com/chazu/bezel/pkg/tessellate"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ValidationSeverity indicates whether a finding blocks rendering or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks rendering
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string             // e.g. "curve[2]", "surface", "step"
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks: both shapes must be drawable and
// every coordinate finite. An empty slice means the scene can be rendered.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateCurve(s)...)
	errs = append(errs, validateSurface(s)...)
	errs = append(errs, validateSettings(s)...)
	return errs
}

// ValidateAll runs the structural checks plus geometric and cost warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Warnings = append(result.Warnings, validateGeometry(s)...)
	result.Warnings = append(result.Warnings, validateCost(s)...)
	return result
}

func validateCurve(s *Scene) []ValidationError {
	var errs []ValidationError
	if len(s.Curve) < 2 {
		errs = append(errs, ValidationError{
			Field:    "curve",
			Message:  fmt.Sprintf("curve needs at least 2 control points, got %d", len(s.Curve)),
			Severity: SeverityError,
		})
	}
	for i, p := range s.Curve {
		if !finite(p) {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("curve[%d]", i),
				Message:  "control point is not finite",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validateSurface(s *Scene) []ValidationError {
	if err := s.Surface.Check(); err != nil {
		return []ValidationError{{
			Field:    "surface",
			Message:  err.Error(),
			Severity: SeverityError,
		}}
	}
	var errs []ValidationError
	for i, row := range s.Surface {
		for j, p := range row {
			if !finite(p) {
				errs = append(errs, ValidationError{
					Field:    fmt.Sprintf("surface[%d][%d]", i, j),
					Message:  "control point is not finite",
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func validateSettings(s *Scene) []ValidationError {
	var errs []ValidationError
	cfg := s.Settings.Tessellation
	if cfg.MaxDepth < tessellate.MinDepth || cfg.MaxDepth > tessellate.MaxDepth {
		errs = append(errs, ValidationError{
			Field:    "tessellation.max_depth",
			Message:  fmt.Sprintf("%d outside [%d, %d], will be clamped", cfg.MaxDepth, tessellate.MinDepth, tessellate.MaxDepth),
			Severity: SeverityWarning,
		})
	}
	if !(cfg.Threshold >= 0 && cfg.Threshold <= tessellate.MaxThreshold) {
		errs = append(errs, ValidationError{
			Field:    "tessellation.threshold",
			Message:  fmt.Sprintf("%g outside [0, %g], will be clamped", cfg.Threshold, tessellate.MaxThreshold),
			Severity: SeverityWarning,
		})
	}
	if !(s.Settings.Step >= MinStep && s.Settings.Step <= MaxStep) {
		errs = append(errs, ValidationError{
			Field:    "step",
			Message:  fmt.Sprintf("%g outside [%g, %g], will be clamped", s.Settings.Step, MinStep, MaxStep),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateGeometry warns about cages that draw nothing visible.
func validateGeometry(s *Scene) []ValidationError {
	var warns []ValidationError
	if len(s.Curve) >= 2 && allEqual(s.Curve) {
		warns = append(warns, ValidationError{
			Field:    "curve",
			Message:  "all control points coincide; the curve is a single point",
			Severity: SeverityWarning,
		})
	}
	if s.Surface.Check() == nil {
		var pts []v2.Vec
		for _, row := range s.Surface {
			pts = append(pts, row...)
		}
		if len(pts) > 1 && allEqual(pts) {
			warns = append(warns, ValidationError{
				Field:    "surface",
				Message:  "all control points coincide; the surface is a single point",
				Severity: SeverityWarning,
			})
		}
		if s.Surface.Rows() == 1 || s.Surface.Cols() == 1 {
			warns = append(warns, ValidationError{
				Field:    "surface",
				Message:  fmt.Sprintf("%dx%d grid is degenerate; the surface is a curve", s.Surface.Rows(), s.Surface.Cols()),
				Severity: SeverityWarning,
			})
		}
	}
	return warns
}

// validateCost warns about settings that make frames expensive.
func validateCost(s *Scene) []ValidationError {
	var warns []ValidationError
	set := s.Settings.Clamped()
	if set.Shape == ShapeSurface && set.Tessellate && set.Tessellation.MaxDepth > 8 {
		warns = append(warns, ValidationError{
			Field:    "tessellation.max_depth",
			Message:  fmt.Sprintf("depth %d may emit up to %d quads per frame", set.Tessellation.MaxDepth, 1<<(2*set.Tessellation.MaxDepth)),
			Severity: SeverityWarning,
		})
	}
	if set.Shape == ShapeSurface && set.Evaluate && set.Step <= MinSurfaceStep {
		warns = append(warns, ValidationError{
			Field:    "step",
			Message:  fmt.Sprintf("surface sweep is skipped at step %g (needs > %g)", set.Step, MinSurfaceStep),
			Severity: SeverityWarning,
		})
	}
	return warns
}

func finite(p v2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func allEqual(pts []v2.Vec) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}
