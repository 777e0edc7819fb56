// Package engine evaluates problem scripts. A script is a small Lisp program
// run in a sandboxed zygomys interpreter whose builtins (constraint, bounds,
// objective, ...) populate a problem.Problem.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/feasible/pkg/problem"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal advisory finding about an evaluated
// problem.
type EvalWarning struct {
	Line         int                  `json:"line"`
	Col          int                  `json:"col"`
	Message      string               `json:"message"`
	ConstraintID problem.ConstraintID `json:"constraintId,omitempty"`
}

// Engine wraps the zygomys interpreter for problem scripts.
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

// Evaluate runs a problem script and returns the problem it defines.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns problem + nil errors + nil error
//   - On parse/eval failure: returns nil problem + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*problem.Problem, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{problem: p, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*problem.Problem, []EvalError, error) {
	p := problem.New()

	// Empty source is a valid script that produces an empty problem.
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode prevents scripts from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if errs := problem.Validate(p); len(errs) > 0 {
		evalErrs := make([]EvalError, len(errs))
		for i, ve := range errs {
			evalErrs[i] = EvalError{Message: ve.Error()}
		}
		return nil, evalErrs, nil
	}
	return p, nil, nil
}

// Warnings returns the advisory findings for p, such as constraints that
// will be ignored because they do not parse.
func Warnings(p *problem.Problem) []EvalWarning {
	res := problem.ValidateAll(p)
	warnings := make([]EvalWarning, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, EvalWarning{
			Message:      w.Message,
			ConstraintID: w.ConstraintID,
		})
	}
	return warnings
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

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
