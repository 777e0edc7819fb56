package problem

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
)

// ConstraintID is a stable identifier for a constraint across edits.
type ConstraintID string

// NewConstraintID returns a fresh random identifier.
func NewConstraintID() ConstraintID {
	return ConstraintID(uuid.NewString())
}

// IsZero reports whether the ID is unset.
func (id ConstraintID) IsZero() bool {
	return id == ""
}

// Short returns the first 8 characters of the ID for log and error messages.
func (id ConstraintID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func (id ConstraintID) String() string {
	return string(id)
}

// Constraint is one user-entered constraint as the editor holds it. The
// expression is kept as text; parsing happens on every recomputation.
type Constraint struct {
	ID         ConstraintID `json:"id"`
	Expression string       `json:"expression"`
	Color      string       `json:"color"`
	Enabled    bool         `json:"enabled"`
}

// Direction selects maximization or minimization of the objective.
type Direction string

const (
	Maximize Direction = "max"
	Minimize Direction = "min"
)

// Valid reports whether d is Maximize or Minimize.
func (d Direction) Valid() bool {
	return d == Maximize || d == Minimize
}

// ParseDirection accepts "max"/"maximize" and "min"/"minimize".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "max", "maximize", "maximise":
		return Maximize, nil
	case "min", "minimize", "minimise":
		return Minimize, nil
	}
	return "", fmt.Errorf("problem: invalid direction %q, expected max or min", s)
}

// Range is the cube [Min, Max]^3 that bounds the search for vertices.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether both ends are finite and Min < Max.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) &&
		!math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0) &&
		r.Min < r.Max
}

// Contains reports whether v lies in [Min-tol, Max+tol].
func (r Range) Contains(v, tol float64) bool {
	return v >= r.Min-tol && v <= r.Max+tol
}

// Objective is the objective expression and optimization direction.
type Objective struct {
	Expression string    `json:"expression"`
	Direction  Direction `json:"direction"`
}

// Problem is the full editable input: an ordered constraint list, the range
// box and the objective.
type Problem struct {
	Constraints []Constraint `json:"constraints"`
	Range       Range        `json:"range"`
	Objective   Objective    `json:"objective"`
}

// New returns a problem with no constraints and the default range and
// objective.
func New() *Problem {
	return &Problem{
		Constraints: []Constraint{},
		Range:       DefaultRange,
		Objective:   DefaultObjective,
	}
}

// Clone returns a deep copy.
func (p *Problem) Clone() *Problem {
	c := *p
	c.Constraints = slices.Clone(p.Constraints)
	if c.Constraints == nil {
		c.Constraints = []Constraint{}
	}
	return &c
}

// Add appends an enabled constraint with a fresh ID. An empty color picks
// the next palette entry.
func (p *Problem) Add(expression, color string) Constraint {
	return p.Append(Constraint{Expression: expression, Color: color, Enabled: true})
}

// Append adds c as given, filling in a fresh ID and the next palette color
// when they are empty, and returns the stored constraint.
func (p *Problem) Append(c Constraint) Constraint {
	if c.ID == "" {
		c.ID = NewConstraintID()
	}
	if c.Color == "" {
		c.Color = PaletteColor(len(p.Constraints))
	}
	p.Constraints = append(p.Constraints, c)
	return c
}

// Index returns the position of the constraint with the given ID, or -1.
func (p *Problem) Index(id ConstraintID) int {
	return slices.IndexFunc(p.Constraints, func(c Constraint) bool { return c.ID == id })
}

// Get returns the constraint with the given ID.
func (p *Problem) Get(id ConstraintID) (Constraint, bool) {
	i := p.Index(id)
	if i < 0 {
		return Constraint{}, false
	}
	return p.Constraints[i], true
}

// Update applies fn to the constraint with the given ID. The ID itself
// cannot be changed.
func (p *Problem) Update(id ConstraintID, fn func(*Constraint)) error {
	i := p.Index(id)
	if i < 0 {
		return fmt.Errorf("problem: no constraint %s", id.Short())
	}
	c := p.Constraints[i]
	fn(&c)
	c.ID = id
	p.Constraints[i] = c
	return nil
}

// Remove deletes the constraint with the given ID.
func (p *Problem) Remove(id ConstraintID) error {
	i := p.Index(id)
	if i < 0 {
		return fmt.Errorf("problem: no constraint %s", id.Short())
	}
	p.Constraints = slices.Delete(p.Constraints, i, i+1)
	return nil
}

// Enabled returns the enabled constraints in order.
func (p *Problem) Enabled() []Constraint {
	var out []Constraint
	for _, c := range p.Constraints {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}
