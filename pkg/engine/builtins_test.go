package engine

import (
	"strings"
	"testing"

	"github.com/chazu/feasible/pkg/problem"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(constraint "x <= 1" :color "#fff")`,
			expect: `(constraint "x <= 1" "__kw_color" "#fff")`,
		},
		{
			name:   "multiple keywords",
			input:  `(bounds :min 0 :max 15)`,
			expect: `(bounds "__kw_min" 0 "__kw_max" 15)`,
		},
		{
			name:   "keyword value",
			input:  `(objective "x" :direction :min)`,
			expect: `(objective "x" "__kw_direction" "__kw_min")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "expression string preserved",
			input:  `(constraint "x-y >= -3")`,
			expect: `(constraint "x-y >= -3")`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(set-palette (list "#fff"))`,
			expect: `(set_palette (list "#fff"))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:max-value`,
			expect: `"__kw_max-value"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *problem.Problem {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if p == nil {
		t.Fatal("expected non-nil problem")
	}
	return p
}

// evalFails evaluates source and returns the eval errors, failing the test
// if there are none.
func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil problem on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs
}

func messages(errs []EvalError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Message
	}
	return strings.Join(parts, "\n")
}

// ---------------------------------------------------------------------------
// Default simplex script
// ---------------------------------------------------------------------------

func TestSimplexScript(t *testing.T) {
	p := evalOK(t, `
; the default problem
(bounds 0 15)
(objective "x + y + z" :direction :max)

(constraint "x + y + z <= 10")
(constraint "x >= 0")
(constraint "y >= 0")
(constraint "z >= 0")
`)
	if len(p.Constraints) != 4 {
		t.Fatalf("expected 4 constraints, got %d", len(p.Constraints))
	}
	want := problem.Default()
	for i, c := range p.Constraints {
		if c.Expression != want.Constraints[i].Expression {
			t.Errorf("constraint %d: expression = %q, want %q", i, c.Expression, want.Constraints[i].Expression)
		}
		if c.Color != want.Constraints[i].Color {
			t.Errorf("constraint %d: color = %q, want %q", i, c.Color, want.Constraints[i].Color)
		}
		if !c.Enabled {
			t.Errorf("constraint %d: expected enabled", i)
		}
		if c.ID.IsZero() {
			t.Errorf("constraint %d: expected an id", i)
		}
	}
	if p.Range != want.Range {
		t.Errorf("range = %+v, want %+v", p.Range, want.Range)
	}
	if p.Objective != want.Objective {
		t.Errorf("objective = %+v, want %+v", p.Objective, want.Objective)
	}
}

func TestScriptDefaults(t *testing.T) {
	p := evalOK(t, `(constraint "x <= 1")`)
	if p.Range != problem.DefaultRange {
		t.Errorf("range = %+v, want default %+v", p.Range, problem.DefaultRange)
	}
	if p.Objective != problem.DefaultObjective {
		t.Errorf("objective = %+v, want default %+v", p.Objective, problem.DefaultObjective)
	}
}

// ---------------------------------------------------------------------------
// constraint options
// ---------------------------------------------------------------------------

func TestConstraintOptions(t *testing.T) {
	p := evalOK(t, `
(constraint "x <= 4" :color "#123456")
(constraint "y <= 4" :enabled false)
(constraint "z <= 4" :enabled true)
`)
	if len(p.Constraints) != 3 {
		t.Fatalf("expected 3 constraints, got %d", len(p.Constraints))
	}
	if p.Constraints[0].Color != "#123456" {
		t.Errorf("expected explicit color, got %q", p.Constraints[0].Color)
	}
	if p.Constraints[1].Enabled {
		t.Error("expected second constraint disabled")
	}
	if p.Constraints[1].Color != problem.Palette[1] {
		t.Errorf("expected palette color %q, got %q", problem.Palette[1], p.Constraints[1].Color)
	}
	if !p.Constraints[2].Enabled {
		t.Error("expected third constraint enabled")
	}
}

func TestConstraintVariableAndDisable(t *testing.T) {
	p := evalOK(t, `
(def top (constraint "z <= 5"))
(constraint "x <= 5")
(disable top)
`)
	if len(p.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(p.Constraints))
	}
	if p.Constraints[0].Enabled {
		t.Error("expected disabled constraint")
	}
	if !p.Constraints[1].Enabled {
		t.Error("expected second constraint untouched")
	}
}

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"no expression", `(constraint)`, "exactly one expression"},
		{"number expression", `(constraint 5)`, "expected string"},
		{"keyword expression", `(constraint :color "#fff")`, "exactly one expression"},
		{"bad enabled", `(constraint "x <= 1" :enabled "yes")`, "enabled"},
		{"disable non-constraint", `(disable "x <= 1")`, "expected constraint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messages(evalFails(t, tt.source))
			if !strings.Contains(msg, tt.substr) {
				t.Errorf("message = %q, want containing %q", msg, tt.substr)
			}
		})
	}
}

// Unparseable expressions are kept; they become warnings, not eval errors.
func TestUnparseableConstraintIsWarning(t *testing.T) {
	p := evalOK(t, `
(constraint "x + y + z <= 10")
(constraint "x >= 0")
(constraint "y >= 0")
(constraint "z >= 0")
(constraint "x + ")
`)
	if len(p.Constraints) != 5 {
		t.Fatalf("expected 5 constraints, got %d", len(p.Constraints))
	}
	warnings := Warnings(p)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if warnings[0].ConstraintID != p.Constraints[4].ID {
		t.Errorf("warning attached to %q, want %q", warnings[0].ConstraintID, p.Constraints[4].ID)
	}
	if !strings.Contains(warnings[0].Message, "is ignored") {
		t.Errorf("unexpected warning message %q", warnings[0].Message)
	}
}

// ---------------------------------------------------------------------------
// bounds
// ---------------------------------------------------------------------------

func TestBounds(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		min, max float64
	}{
		{"positional", `(bounds 2 8)`, 2, 8},
		{"keywords", `(bounds :min 1 :max 4.5)`, 1, 4.5},
		{"max only", `(bounds :max 30)`, 0, 30},
		{"arithmetic", `(bounds 0 (* 2 10))`, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := evalOK(t, tt.source)
			if p.Range.Min != tt.min || p.Range.Max != tt.max {
				t.Errorf("range = [%g, %g], want [%g, %g]", p.Range.Min, p.Range.Max, tt.min, tt.max)
			}
		})
	}
}

func TestBoundsErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"inverted", `(bounds 10 5)`, "must be less than"},
		{"equal", `(bounds 3 3)`, "must be less than"},
		{"one argument", `(bounds 5)`, "requires min and max"},
		{"string", `(bounds "a" 5)`, "expected number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messages(evalFails(t, tt.source))
			if !strings.Contains(msg, tt.substr) {
				t.Errorf("message = %q, want containing %q", msg, tt.substr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// objective
// ---------------------------------------------------------------------------

func TestObjective(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   problem.Objective
	}{
		{"default direction", `(objective "2x + y")`, problem.Objective{Expression: "2x + y", Direction: problem.Maximize}},
		{"keyword direction", `(objective "z" :direction :min)`, problem.Objective{Expression: "z", Direction: problem.Minimize}},
		{"string direction", `(objective "z" :direction "minimize")`, problem.Objective{Expression: "z", Direction: problem.Minimize}},
		{"maximize", `(maximize "x - y")`, problem.Objective{Expression: "x - y", Direction: problem.Maximize}},
		{"minimize", `(minimize "x + z")`, problem.Objective{Expression: "x + z", Direction: problem.Minimize}},
		{"last wins", `(minimize "x") (maximize "y")`, problem.Objective{Expression: "y", Direction: problem.Maximize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := evalOK(t, tt.source)
			if p.Objective != tt.want {
				t.Errorf("objective = %+v, want %+v", p.Objective, tt.want)
			}
		})
	}
}

func TestObjectiveErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"bad direction", `(objective "x" :direction :sideways)`, "direction"},
		{"no expression", `(maximize)`, "exactly one expression"},
		{"two expressions", `(objective "x" "y")`, "exactly one expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messages(evalFails(t, tt.source))
			if !strings.Contains(msg, tt.substr) {
				t.Errorf("message = %q, want containing %q", msg, tt.substr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// set-palette
// ---------------------------------------------------------------------------

func TestSetPalette(t *testing.T) {
	p := evalOK(t, `
(set-palette (list "#000000" "#ffffff"))
(constraint "x <= 1")
(constraint "y <= 1")
(constraint "z <= 1")
`)
	want := []string{"#000000", "#ffffff", "#000000"}
	for i, c := range p.Constraints {
		if c.Color != want[i] {
			t.Errorf("constraint %d: color = %q, want %q", i, c.Color, want[i])
		}
	}
}

func TestSetPaletteEmpty(t *testing.T) {
	msg := messages(evalFails(t, `(set-palette (list))`))
	if !strings.Contains(msg, "empty") {
		t.Errorf("message = %q, want containing %q", msg, "empty")
	}
}

// ---------------------------------------------------------------------------
// Script round trip
// ---------------------------------------------------------------------------

func TestScriptRoundTrip(t *testing.T) {
	orig := problem.Default()
	orig.Range = problem.Range{Min: 1, Max: 12.5}
	orig.Objective = problem.Objective{Expression: "x - 2y", Direction: problem.Minimize}
	orig.Constraints[2].Enabled = false
	orig.Constraints[3].Color = "#abcdef"

	back := evalOK(t, Script(orig))
	if back.Range != orig.Range {
		t.Errorf("range = %+v, want %+v", back.Range, orig.Range)
	}
	if back.Objective != orig.Objective {
		t.Errorf("objective = %+v, want %+v", back.Objective, orig.Objective)
	}
	if len(back.Constraints) != len(orig.Constraints) {
		t.Fatalf("expected %d constraints, got %d", len(orig.Constraints), len(back.Constraints))
	}
	for i, c := range back.Constraints {
		o := orig.Constraints[i]
		if c.Expression != o.Expression || c.Color != o.Color || c.Enabled != o.Enabled {
			t.Errorf("constraint %d = %+v, want %+v", i, c, o)
		}
	}
}

func TestScriptFormat(t *testing.T) {
	p := problem.New()
	p.Add("x <= 1", "#fff")
	got := Script(p)
	want := "(bounds 0 15)\n" +
		"(objective \"x + y + z\" :direction :max)\n" +
		"\n" +
		"(constraint \"x <= 1\" :color \"#fff\")\n"
	if got != want {
		t.Errorf("Script() =\n%s\nwant\n%s", got, want)
	}
}

// ---------------------------------------------------------------------------
// Empty source produces empty problem (regression)
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	p := evalOK(t, "")
	if len(p.Constraints) != 0 {
		t.Errorf("expected empty problem, got %d constraints", len(p.Constraints))
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	evalOK(t, "(+ 1 2)")
}
