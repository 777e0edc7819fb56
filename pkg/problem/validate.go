package problem

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/feasible/pkg/expr"
)

// ValidationSeverity indicates whether a validation finding blocks
// computation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks computation
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
	ConstraintID ConstraintID       // offending constraint (zero if problem-level)
	Message      string             // human-readable description
	Severity     ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.ConstraintID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] constraint %s: %s", e.Severity, e.ConstraintID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	ConstraintID ConstraintID `json:"constraintId,omitempty"`
	Message      string       `json:"message"`
}

// ValidationResult bundles errors (blocking) and warnings (advisory) from all
// validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks: range, direction and constraint
// identity. An empty slice means the problem can be computed. It never
// mutates p.
func Validate(p *Problem) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRange(p)...)
	errs = append(errs, validateDirection(p)...)
	errs = append(errs, validateIDs(p)...)
	return errs
}

// ValidateAll runs every tier and returns errors and warnings separately.
//
// Tier 1 is structural (Validate). Tier 2 parses each enabled constraint and
// the objective. Tier 3 flags cosmetic problems such as duplicated
// expressions and malformed colors.
func ValidateAll(p *Problem) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(p) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				ConstraintID: e.ConstraintID,
				Message:      e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Warnings = append(result.Warnings, validateExpressions(p)...)
	result.Warnings = append(result.Warnings, validateCosmetics(p)...)
	return result
}

func validateRange(p *Problem) []ValidationError {
	if p.Range.Valid() {
		return nil
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("range [%g, %g] is invalid, min must be finite and less than max", p.Range.Min, p.Range.Max),
		Severity: SeverityError,
	}}
}

func validateDirection(p *Problem) []ValidationError {
	if p.Objective.Direction.Valid() {
		return nil
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("objective direction %q is invalid, expected max or min", p.Objective.Direction),
		Severity: SeverityError,
	}}
}

func validateIDs(p *Problem) []ValidationError {
	var errs []ValidationError
	seen := make(map[ConstraintID]bool, len(p.Constraints))
	for i, c := range p.Constraints {
		if c.ID.IsZero() {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("constraint %d has no id", i),
				Severity: SeverityError,
			})
			continue
		}
		if seen[c.ID] {
			errs = append(errs, ValidationError{
				ConstraintID: c.ID,
				Message:      "duplicate constraint id",
				Severity:     SeverityError,
			})
		}
		seen[c.ID] = true
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: expression warnings
// ---------------------------------------------------------------------------

// MinUsableConstraints is the number of non-degenerate enabled constraints
// below which no vertex search is attempted.
const MinUsableConstraints = 3

func validateExpressions(p *Problem) []ValidationWarning {
	var warnings []ValidationWarning
	usable := 0
	for _, c := range p.Constraints {
		if !c.Enabled {
			continue
		}
		q, err := expr.ParseInequality(c.Expression)
		if err != nil {
			warnings = append(warnings, ValidationWarning{
				ConstraintID: c.ID,
				Message:      fmt.Sprintf("%q is ignored: %v", c.Expression, err),
			})
			continue
		}
		if q.Degenerate() {
			warnings = append(warnings, ValidationWarning{
				ConstraintID: c.ID,
				Message:      fmt.Sprintf("%q has no variables and does not bound the region", c.Expression),
			})
			continue
		}
		usable++
	}
	if usable < MinUsableConstraints {
		warnings = append(warnings, ValidationWarning{
			Message: fmt.Sprintf("need at least %d usable constraints, have %d", MinUsableConstraints, usable),
		})
	}
	if _, err := expr.ParseObjective(p.Objective.Expression); err != nil {
		warnings = append(warnings, ValidationWarning{
			Message: fmt.Sprintf("objective %q is ignored: %v", p.Objective.Expression, err),
		})
	}
	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: cosmetic warnings
// ---------------------------------------------------------------------------

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validateCosmetics(p *Problem) []ValidationWarning {
	var warnings []ValidationWarning
	seen := make(map[string]ConstraintID)
	for _, c := range p.Constraints {
		if c.Color != "" && !hexColor.MatchString(c.Color) {
			warnings = append(warnings, ValidationWarning{
				ConstraintID: c.ID,
				Message:      fmt.Sprintf("color %q is not a hex color", c.Color),
			})
		}
		if !c.Enabled {
			continue
		}
		key := strings.Join(strings.Fields(c.Expression), "")
		if first, dup := seen[key]; dup {
			warnings = append(warnings, ValidationWarning{
				ConstraintID: c.ID,
				Message:      fmt.Sprintf("same expression as constraint %s", first.Short()),
			})
			continue
		}
		seen[key] = c.ID
	}
	return warnings
}
