package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// termPattern matches one signed term of a linear expression: an optional
// sign, an optional numeric coefficient, an optional '*' and exactly one
// variable letter.
var termPattern = regexp.MustCompile(`([+-]?)(\d*\.?\d*)\*?([xyz])`)

// signedChunkPattern splits an expression into maximal signed substrings.
var signedChunkPattern = regexp.MustCompile(`[+-]?[^+-]+`)

// normalize removes all whitespace, maps decimal commas to periods and
// replaces the unicode comparison signs with their ASCII spelling.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "≤", "<=")
	s = strings.ReplaceAll(s, "≥", ">=")
	s = strings.ReplaceAll(s, ",", ".")
	return strings.Join(strings.Fields(s), "")
}

// ParseObjective parses a linear expression such as "3x - 2*y + z" into its
// coefficients. Constant terms are ignored. An expression without any
// non-zero variable term is rejected.
func ParseObjective(text string) (LinearForm, error) {
	s := normalize(text)
	if s == "" {
		return LinearForm{}, fmt.Errorf("expr: empty objective")
	}
	f, err := scanLinear(s)
	if err != nil {
		return LinearForm{}, fmt.Errorf("expr: objective %q: %w", text, err)
	}
	if f.IsZero() {
		return LinearForm{}, fmt.Errorf("expr: objective %q has no variable terms", text)
	}
	return f, nil
}

// ParseInequality parses constraint text such as "2x + y <= 10/4" into
// canonical form. The operator is detected by the first of "<=", ">=", "<",
// ">", "=" present in the text and the text is split at its first
// occurrence. The right-hand side is evaluated with Eval.
//
// A left-hand side without variables (e.g. "5 <= 10") is accepted and yields
// a degenerate inequality.
func ParseInequality(text string) (Inequality, error) {
	s := normalize(text)

	op, ok := detectOperator(s)
	if !ok {
		return Inequality{}, fmt.Errorf("expr: %q: no comparison operator", text)
	}
	left, right, _ := strings.Cut(s, string(op))
	if left == "" {
		return Inequality{}, fmt.Errorf("expr: %q: empty left-hand side", text)
	}

	d, err := Eval(right)
	if err != nil {
		return Inequality{}, fmt.Errorf("expr: %q: right-hand side: %w", text, err)
	}

	f, err := scanLinear(left)
	if err != nil {
		return Inequality{}, fmt.Errorf("expr: %q: left-hand side: %w", text, err)
	}

	return Inequality{LinearForm: f, D: d, Op: op}, nil
}

// MustParseInequality is like ParseInequality but panics on error.
// Intended for tests and fixed tables.
func MustParseInequality(text string) Inequality {
	q, err := ParseInequality(text)
	if err != nil {
		panic(err)
	}
	return q
}

func detectOperator(s string) (Operator, bool) {
	for _, op := range detectionOrder {
		if strings.Contains(s, string(op)) {
			return op, true
		}
	}
	return "", false
}

// scanLinear recovers (a, b, c) from a normalized expression. The regex scan
// runs first; the split-and-strip scan runs only when the regex scan leaves
// every coefficient at zero. Repeated variables overwrite, they do not add up.
func scanLinear(s string) (LinearForm, error) {
	f, err := scanTerms(s)
	if err != nil {
		return LinearForm{}, err
	}
	if !f.IsZero() {
		return f, nil
	}
	return scanChunks(s)
}

func scanTerms(s string) (LinearForm, error) {
	var f LinearForm
	for _, m := range termPattern.FindAllStringSubmatch(s, -1) {
		coef := 1.0
		if m[2] != "" {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return LinearForm{}, fmt.Errorf("bad coefficient %q for %s", m[2], m[3])
			}
			coef = v
		}
		if m[1] == "-" {
			coef = -coef
		}
		f.set(m[3][0], coef)
	}
	return f, nil
}

func scanChunks(s string) (LinearForm, error) {
	var f LinearForm
	for _, chunk := range signedChunkPattern.FindAllString(s, -1) {
		for _, name := range []byte{'x', 'y', 'z'} {
			if !strings.ContainsRune(chunk, rune(name)) {
				continue
			}
			residue := strings.Replace(chunk, string(name), "", 1)
			residue = strings.Replace(residue, "*", "", 1)
			coef, err := residueCoefficient(residue)
			if err != nil {
				return LinearForm{}, fmt.Errorf("bad term %q: %w", chunk, err)
			}
			f.set(name, coef)
			break
		}
	}
	return f, nil
}

func residueCoefficient(residue string) (float64, error) {
	switch residue {
	case "", "+":
		return 1, nil
	case "-":
		return -1, nil
	}
	return strconv.ParseFloat(residue, 64)
}

func (f *LinearForm) set(name byte, v float64) {
	switch name {
	case 'x':
		f.A = v
	case 'y':
		f.B = v
	case 'z':
		f.C = v
	}
}
