package session

import (
	"fmt"

	"github.com/chazu/feasible/pkg/problem"
)

// AddConstraint appends an enabled constraint. An empty expression uses
// problem.DefaultExpression; an empty color picks from the palette.
func (s *Session) AddConstraint(expression, color string) (problem.Constraint, error) {
	if expression == "" {
		expression = problem.DefaultExpression
	}
	var added problem.Constraint
	err := s.edit(func(p *problem.Problem) error {
		added = p.Add(expression, color)
		return nil
	})
	return added, err
}

// SetExpression replaces the text of a constraint.
func (s *Session) SetExpression(id problem.ConstraintID, expression string) error {
	return s.edit(func(p *problem.Problem) error {
		return p.Update(id, func(c *problem.Constraint) { c.Expression = expression })
	})
}

// SetColor changes the display color of a constraint.
func (s *Session) SetColor(id problem.ConstraintID, color string) error {
	return s.edit(func(p *problem.Problem) error {
		return p.Update(id, func(c *problem.Constraint) { c.Color = color })
	})
}

// SetEnabled toggles whether a constraint takes part in the computation.
func (s *Session) SetEnabled(id problem.ConstraintID, enabled bool) error {
	return s.edit(func(p *problem.Problem) error {
		return p.Update(id, func(c *problem.Constraint) { c.Enabled = enabled })
	})
}

// RemoveConstraint deletes a constraint.
func (s *Session) RemoveConstraint(id problem.ConstraintID) error {
	return s.edit(func(p *problem.Problem) error {
		return p.Remove(id)
	})
}

// SetRange changes the range box. Invalid ranges are rejected and leave the
// problem unchanged.
func (s *Session) SetRange(min, max float64) error {
	r := problem.Range{Min: min, Max: max}
	if !r.Valid() {
		return fmt.Errorf("session: invalid range [%g, %g]", min, max)
	}
	return s.edit(func(p *problem.Problem) error {
		p.Range = r
		return nil
	})
}

// SetObjective replaces the objective expression.
func (s *Session) SetObjective(expression string) error {
	return s.edit(func(p *problem.Problem) error {
		p.Objective.Expression = expression
		return nil
	})
}

// SetDirection switches between maximizing and minimizing.
func (s *Session) SetDirection(d problem.Direction) error {
	if !d.Valid() {
		return fmt.Errorf("session: invalid direction %q", d)
	}
	return s.edit(func(p *problem.Problem) error {
		p.Objective.Direction = d
		return nil
	})
}

// Replace swaps in a whole new problem, for example one loaded from a
// script.
func (s *Session) Replace(np *problem.Problem) error {
	if np == nil {
		return fmt.Errorf("session: nil problem")
	}
	if errs := problem.Validate(np); len(errs) > 0 {
		return fmt.Errorf("session: %w", errs[0])
	}
	return s.edit(func(p *problem.Problem) error {
		*p = *np.Clone()
		return nil
	})
}

// Load swaps in a whole new problem and recomputes immediately instead of
// waiting for the debounce timer. It returns the resulting snapshot.
func (s *Session) Load(np *problem.Problem) (Snapshot, error) {
	if np == nil {
		return Snapshot{}, fmt.Errorf("session: nil problem")
	}
	if errs := problem.Validate(np); len(errs) > 0 {
		return Snapshot{}, fmt.Errorf("session: %w", errs[0])
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("session: closed")
	}
	s.problem = np.Clone()
	s.mu.Unlock()
	return s.Recompute(), nil
}
