package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/feasible/pkg/problem"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms problem script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: set-palette -> set_palette
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpConstraint is returned by `constraint` so scripts can bind it to a
// name and pass it to `disable`.
type sexpConstraint struct {
	id         problem.ConstraintID
	expression string
}

func (c *sexpConstraint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(constraint %q)", c.expression)
}
func (c *sexpConstraint) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

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
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toBool extracts a bool from a Sexp. A keyword with no value (parsed as
// SexpNull) counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toExpression extracts constraint or objective text. Keywords are
// rejected so that a misplaced :option is reported rather than parsed.
func toExpression(s zygo.Sexp) (string, error) {
	if _, ok := isKW(s); ok {
		return "", fmt.Errorf("expected expression string, got keyword %s", s.SexpString(nil))
	}
	return toString(s)
}

// toDirection converts a keyword or string to a problem.Direction.
func toDirection(s zygo.Sexp) (problem.Direction, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected direction keyword (:max, :min): %w", err)
	}
	return problem.ParseDirection(name)
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

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the problem-script builtins into a zygomys
// environment. The builtins populate p during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *problem.Problem) {
	palette := append([]string(nil), problem.Palette...)

	// -----------------------------------------------------------------------
	// (constraint "x + y <= 10" :color "#ff6b6b" :enabled false)
	// -----------------------------------------------------------------------
	env.AddFunction("constraint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("constraint requires exactly one expression, got %d", len(pa.positional))
		}
		text, err := toExpression(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constraint: %w", err)
		}

		color := palette[len(p.Constraints)%len(palette)]
		if v, ok := pa.kw["color"]; ok {
			color, err = toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constraint: color: %w", err)
			}
		}
		enabled := true
		if v, ok := pa.kw["enabled"]; ok {
			enabled, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constraint: enabled: %w", err)
			}
		}

		c := p.Append(problem.Constraint{Expression: text, Color: color, Enabled: enabled})
		return &sexpConstraint{id: c.ID, expression: text}, nil
	})

	// -----------------------------------------------------------------------
	// (disable c) where c was returned by constraint
	// -----------------------------------------------------------------------
	env.AddFunction("disable", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, a := range args {
			ref, ok := a.(*sexpConstraint)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("disable: argument %d: expected constraint, got %T (%s)",
					i, a, a.SexpString(nil))
			}
			if err := p.Update(ref.id, func(c *problem.Constraint) { c.Enabled = false }); err != nil {
				return zygo.SexpNull, fmt.Errorf("disable: %w", err)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (bounds 0 15) or (bounds :min 0 :max 15)
	// -----------------------------------------------------------------------
	env.AddFunction("bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r := p.Range
		var err error
		switch len(pa.positional) {
		case 0:
		case 2:
			if r.Min, err = toFloat64(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: min: %w", err)
			}
			if r.Max, err = toFloat64(pa.positional[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: max: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("bounds requires min and max, got %d positional arguments", len(pa.positional))
		}
		if v, ok := pa.kw["min"]; ok {
			if r.Min, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: min: %w", err)
			}
		}
		if v, ok := pa.kw["max"]; ok {
			if r.Max, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: max: %w", err)
			}
		}
		if !r.Valid() {
			return zygo.SexpNull, fmt.Errorf("bounds: min %g must be less than max %g", r.Min, r.Max)
		}
		p.Range = r
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (objective "x + y + z" :direction :max)
	// -----------------------------------------------------------------------
	env.AddFunction("objective", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("objective requires exactly one expression, got %d", len(pa.positional))
		}
		text, err := toExpression(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("objective: %w", err)
		}
		p.Objective.Expression = text
		if v, ok := pa.kw["direction"]; ok {
			d, err := toDirection(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("objective: direction: %w", err)
			}
			p.Objective.Direction = d
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (maximize "x + y") and (minimize "x + y")
	// -----------------------------------------------------------------------
	for fn, dir := range map[string]problem.Direction{
		"maximize": problem.Maximize,
		"minimize": problem.Minimize,
	} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly one expression, got %d", name, len(args))
			}
			text, err := toExpression(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			p.Objective = problem.Objective{Expression: text, Direction: dir}
			return zygo.SexpNull, nil
		})
	}

	// -----------------------------------------------------------------------
	// (set-palette (list "#ff0000" "#00ff00"))
	//
	// Registered as "set_palette"; the preprocessor converts set-palette.
	// -----------------------------------------------------------------------
	env.AddFunction("set_palette", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-palette requires a list of colors")
		}
		items, err := sexpListToSlice(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-palette: %w", err)
		}
		if len(items) == 0 {
			return zygo.SexpNull, fmt.Errorf("set-palette: palette is empty")
		}
		colors := make([]string, len(items))
		for i, item := range items {
			if colors[i], err = toString(item); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-palette: entry %d: %w", i, err)
			}
		}
		palette = colors
		return zygo.SexpNull, nil
	})
}
