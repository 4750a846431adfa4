// Package engine provides the Lisp evaluation engine for bezel scene scripts.
// It wraps zygomys in a sandboxed environment and produces a validated
// scene.Scene from user source code.
package engine

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/bezel/pkg/logging"
	"github.com/chazu/bezel/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a scene that
// cannot be drawn.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning about an evaluated scene.
type EvalWarning struct {
	Field   string
	Message string
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Scene    *scene.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the evaluation produced a scene.
func (r EvalResult) OK() bool {
	return r.Scene != nil && len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source on top of the default scene.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval/validation failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	return e.EvaluateFrom(scene.Default(), source)
}

// EvaluateFrom runs source on top of a copy of base. Anything the script
// does not set keeps its value from base. base itself is never modified.
func (e *Engine) EvaluateFrom(base *scene.Scene, source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := base.Clone()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(start, source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// Run evaluates source on top of base and folds every outcome into an
// EvalResult. Fatal failures become a single EvalError and warnings come
// from scene.ValidateAll.
func (e *Engine) Run(base *scene.Scene, source string) EvalResult {
	began := time.Now()
	s, evalErrs, err := e.EvaluateFrom(base, source)
	if err != nil {
		return EvalResult{Errors: []EvalError{{Message: err.Error()}}}
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}
	}

	result := EvalResult{Scene: s}
	for _, w := range scene.ValidateAll(s).Warnings {
		result.Warnings = append(result.Warnings, EvalWarning{Field: w.Field, Message: w.Message})
	}
	logging.Logger().Debug("scene evaluated",
		"duration", time.Since(began),
		"curvePoints", len(s.Curve),
		"surfaceRows", s.Surface.Rows(),
		"surfaceCols", s.Surface.Cols(),
		"warnings", len(result.Warnings),
	)
	return result
}

// RunFile reads a scene script from path and runs it on top of base.
func (e *Engine) RunFile(base *scene.Scene, path string) (EvalResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read scene script: %w", err)
	}
	return e.Run(base, string(src)), nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(start *scene.Scene, source string) (*scene.Scene, []EvalError, error) {
	// Empty source leaves the starting scene untouched.
	if strings.TrimSpace(source) == "" {
		return start, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &sceneBuilder{scene: start}
	registerBuiltins(env, b)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	// Out-of-range settings are advisory; only structural problems block.
	var evalErrs []EvalError
	for _, ve := range scene.Validate(b.scene) {
		if ve.Severity == scene.SeverityError {
			evalErrs = append(evalErrs, EvalError{Message: ve.Error()})
		}
	}
	if len(evalErrs) > 0 {
		return nil, evalErrs, nil
	}

	b.scene.SelectPoint(b.scene.Selection.Point)
	b.scene.SelectCoord(b.scene.Selection.Row, b.scene.Selection.Col)
	return b.scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
