package polytope

import (
	"math"

	"github.com/samber/lo"

	"github.com/chazu/feasible/pkg/expr"
	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/problem"
)

// Bound is an enabled constraint that parsed successfully.
type Bound struct {
	// Index is the position of the constraint in the input list.
	Index      int                  `json:"index"`
	ID         problem.ConstraintID `json:"id,omitempty"`
	Expression string               `json:"expression"`
	Color      string               `json:"color,omitempty"`
	expr.Inequality
}

// Plane returns the boundary plane of the bound.
func (b Bound) Plane() geom.Plane {
	return geom.PlaneOf(b.Inequality)
}

// Skipped records an enabled constraint dropped because it failed to parse.
type Skipped struct {
	Index      int                  `json:"index"`
	ID         problem.ConstraintID `json:"id,omitempty"`
	Expression string               `json:"expression"`
	Reason     string               `json:"reason"`
}

// ConstraintCheck is the outcome of testing one constraint at a point.
type ConstraintCheck struct {
	Index      int           `json:"index"`
	Expression string        `json:"expression"`
	Value      float64       `json:"value"`
	Bound      float64       `json:"bound"`
	Operator   expr.Operator `json:"operator"`
	Satisfied  bool          `json:"satisfied"`
}

// ParseConstraints parses every enabled constraint. Disabled constraints are
// ignored entirely; enabled ones that fail to parse are returned as skipped.
// Degenerate constraints (no variable terms) are kept: they still take part
// in feasibility tests even though they contribute no plane.
func ParseConstraints(cs []problem.Constraint) ([]Bound, []Skipped) {
	bounds := []Bound{}
	skipped := []Skipped{}
	for i, c := range cs {
		if !c.Enabled {
			continue
		}
		q, err := expr.ParseInequality(c.Expression)
		if err != nil {
			skipped = append(skipped, Skipped{
				Index:      i,
				ID:         c.ID,
				Expression: c.Expression,
				Reason:     err.Error(),
			})
			continue
		}
		bounds = append(bounds, Bound{
			Index:      i,
			ID:         c.ID,
			Expression: c.Expression,
			Color:      c.Color,
			Inequality: q,
		})
	}
	return bounds, skipped
}

// Satisfies reports whether p satisfies q within tol. Strict operators are
// tested like their non-strict counterparts.
func Satisfies(q expr.Inequality, p geom.Point3, tol float64) bool {
	v := q.Value(p.X, p.Y, p.Z)
	switch q.Op {
	case expr.OpLE, expr.OpLT:
		return v <= q.D+tol
	case expr.OpGE, expr.OpGT:
		return v >= q.D-tol
	case expr.OpEQ:
		return math.Abs(v-q.D) < tol
	}
	return false
}

// SatisfiesAll reports whether p satisfies every bound within tol.
func SatisfiesAll(bounds []Bound, p geom.Point3, tol float64) bool {
	return lo.EveryBy(bounds, func(b Bound) bool {
		return Satisfies(b.Inequality, p, tol)
	})
}

// PlanesThrough counts the planes that pass through p within tol, whatever
// the operator of the constraint they came from.
func PlanesThrough(planes []geom.Plane, p geom.Point3, tol float64) int {
	return lo.CountBy(planes, func(pl geom.Plane) bool {
		return pl.Contains(p, tol)
	})
}

// Check returns the per-constraint detail of p against every bound.
func Check(bounds []Bound, p geom.Point3, tol float64) []ConstraintCheck {
	return lo.Map(bounds, func(b Bound, _ int) ConstraintCheck {
		return ConstraintCheck{
			Index:      b.Index,
			Expression: b.Expression,
			Value:      b.Value(p.X, p.Y, p.Z),
			Bound:      b.D,
			Operator:   b.Op,
			Satisfied:  Satisfies(b.Inequality, p, tol),
		}
	})
}

// planesOf returns the planes of the non-degenerate bounds, in order.
func planesOf(bounds []Bound) []geom.Plane {
	return lo.FilterMap(bounds, func(b Bound, _ int) (geom.Plane, bool) {
		return b.Plane(), !b.Degenerate()
	})
}
