// Package expr parses linear expressions and inequalities over the three
// variables x, y and z into canonical coefficient form.
//
// Parsing never panics. Unparseable input is reported as an error and callers
// in the pipeline drop the offending constraint rather than failing.
package expr

import (
	"strconv"
	"strings"
)

// Operator is a comparison operator of an inequality.
type Operator string

const (
	OpLE Operator = "<="
	OpGE Operator = ">="
	OpLT Operator = "<"
	OpGT Operator = ">"
	OpEQ Operator = "="
)

// detectionOrder lists operators in the order they are searched for in
// constraint text. "<=" and ">=" must come before "<" and ">".
var detectionOrder = []Operator{OpLE, OpGE, OpLT, OpGT, OpEQ}

// Valid reports whether o is one of the five supported operators.
func (o Operator) Valid() bool {
	switch o {
	case OpLE, OpGE, OpLT, OpGT, OpEQ:
		return true
	}
	return false
}

// LinearForm holds the coefficients of a·x + b·y + c·z.
type LinearForm struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// At evaluates the form at (x, y, z).
func (f LinearForm) At(x, y, z float64) float64 {
	return f.A*x + f.B*y + f.C*z
}

// IsZero reports whether all three coefficients are zero.
func (f LinearForm) IsZero() bool {
	return f.A == 0 && f.B == 0 && f.C == 0
}

// String renders the form canonically as "a*x+b*y+c*z". All three terms are
// always present so the output parses back to the same coefficients.
func (f LinearForm) String() string {
	var sb strings.Builder
	for i, t := range []struct {
		coef float64
		name byte
	}{{f.A, 'x'}, {f.B, 'y'}, {f.C, 'z'}} {
		c := t.coef
		if c == 0 {
			c = 0 // drop negative zero
		}
		switch {
		case c < 0:
			sb.WriteByte('-')
			c = -c
		case i > 0:
			sb.WriteByte('+')
		}
		sb.WriteString(formatNumber(c))
		sb.WriteByte('*')
		sb.WriteByte(t.name)
	}
	return sb.String()
}

// Inequality is a constraint in canonical form: a·x + b·y + c·z (Op) D.
type Inequality struct {
	LinearForm
	D  float64  `json:"d"`
	Op Operator `json:"operator"`
}

// Degenerate reports whether the left-hand side has no variable terms. Such a
// constraint does not describe a plane and cannot bound a region.
func (q Inequality) Degenerate() bool {
	return q.IsZero()
}

// Value evaluates the left-hand side at (x, y, z).
func (q Inequality) Value(x, y, z float64) float64 {
	return q.At(x, y, z)
}

// String returns the canonical text of q, see Format.
func (q Inequality) String() string {
	return Format(q)
}

// Format renders q as "a*x+b*y+c*z <= d". The result round-trips through
// ParseInequality.
func Format(q Inequality) string {
	d := q.D
	if d == 0 {
		d = 0
	}
	op := q.Op
	if !op.Valid() {
		op = OpLE
	}
	return q.LinearForm.String() + " " + string(op) + " " + formatNumber(d)
}

// formatNumber prints v in plain decimal notation. Exponent notation is
// avoided because the term scanner does not recognise it.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
