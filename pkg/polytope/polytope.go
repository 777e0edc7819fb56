package polytope

import (
	"math"

	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/problem"
)

// Status summarizes why a result is or is not empty.
type Status string

const (
	StatusOK                Status = "ok"
	StatusTooFewConstraints Status = "too-few-constraints"
	StatusNoPolytope        Status = "no-polytope"
	StatusInvalidRange      Status = "invalid-range"
)

// Input is everything Compute needs. It is a plain value; Compute never
// retains or mutates it.
type Input struct {
	Constraints []problem.Constraint `json:"constraints"`
	Range       problem.Range        `json:"range"`
	Objective   problem.Objective    `json:"objective"`
	// Tolerances may be left zero to use DefaultTolerances.
	Tolerances Tolerances `json:"tolerances"`
}

// InputFrom builds an Input from a problem.
func InputFrom(p *problem.Problem) Input {
	return Input{
		Constraints: p.Constraints,
		Range:       p.Range,
		Objective:   p.Objective,
	}
}

// Vertex is a corner of the feasible polytope.
type Vertex struct {
	Index int `json:"index"`
	geom.Point3
	Checks        []ConstraintCheck `json:"checks"`
	FullyFeasible bool              `json:"fullyFeasible"`
}

// Result is the output of Compute. Slices are never nil so they encode as
// empty JSON arrays.
type Result struct {
	Status   Status    `json:"status"`
	Vertices []Vertex  `json:"vertices"`
	Faces    []Face    `json:"faces"`
	Optimum  *Optimum  `json:"optimum"`
	Parsed   []Bound   `json:"parsed"`
	Skipped  []Skipped `json:"skipped"`
	// Extent is a scene half-size hint for the viewer.
	Extent float64 `json:"extent"`
}

// Points returns the vertex positions in order.
func (r Result) Points() []geom.Point3 {
	pts := make([]geom.Point3, len(r.Vertices))
	for i, v := range r.Vertices {
		pts[i] = v.Point3
	}
	return pts
}

// Empty reports whether no polytope was found.
func (r Result) Empty() bool {
	return len(r.Vertices) == 0
}

// Compute runs the whole pipeline: parse, enumerate vertices, evaluate the
// objective and reconstruct faces. It is a pure function of in.
func Compute(in Input) Result {
	tol := in.Tolerances.withDefaults()
	bounds, skipped := ParseConstraints(in.Constraints)

	res := Result{
		Vertices: []Vertex{},
		Faces:    []Face{},
		Parsed:   bounds,
		Skipped:  skipped,
		Extent:   Extent(in.Range, bounds),
	}
	log := Logger()
	for _, s := range skipped {
		log.Debug("constraint skipped", "index", s.Index, "expression", s.Expression, "reason", s.Reason)
	}

	if !in.Range.Valid() {
		res.Status = StatusInvalidRange
		return res
	}

	usable := len(planesOf(bounds))
	if usable < MinConstraints {
		res.Status = StatusTooFewConstraints
		return res
	}
	if usable > ComplexityCeiling {
		log.Warn("constraint count above complexity ceiling", "constraints", usable, "ceiling", ComplexityCeiling)
	}

	e := newEnumerator(bounds, in.Range, tol)
	points := e.run()
	log.Debug("vertices enumerated",
		"constraints", usable, "solved", e.solved, "rejected", e.rejected, "vertices", e.seen.len())

	if len(points) < MinVertices {
		res.Status = StatusNoPolytope
		return res
	}

	res.Status = StatusOK
	res.Vertices = make([]Vertex, len(points))
	for i, p := range points {
		checks := Check(bounds, p, tol.Feasibility)
		res.Vertices[i] = Vertex{
			Index:         i,
			Point3:        p,
			Checks:        checks,
			FullyFeasible: allSatisfied(checks),
		}
	}
	res.Optimum = Optimize(in.Objective.Expression, in.Objective.Direction, points)
	res.Faces = reconstructFaces(points, bounds, tol)
	log.Debug("faces reconstructed", "faces", len(res.Faces))
	return res
}

func allSatisfied(checks []ConstraintCheck) bool {
	for _, c := range checks {
		if !c.Satisfied {
			return false
		}
	}
	return true
}

// MinExtent is the smallest scene extent returned by Extent.
const MinExtent = 20

// Extent returns a scene half-size large enough to show the range box and
// the constraint planes: the largest of |min|, |max| and 1.5·|d| over the
// non-degenerate bounds, and at least MinExtent.
func Extent(rng problem.Range, bounds []Bound) float64 {
	ext := math.Max(math.Abs(rng.Min), math.Abs(rng.Max))
	for _, b := range bounds {
		if b.Degenerate() || b.D == 0 {
			continue
		}
		ext = math.Max(ext, 1.5*math.Abs(b.D))
	}
	if math.IsNaN(ext) || ext < MinExtent {
		return MinExtent
	}
	return ext
}

// FocusPosition returns a camera position looking at p from the (1,1,1)
// diagonal, far enough away to frame the point.
func FocusPosition(p geom.Point3) geom.Point3 {
	offset := 0.4 * math.Max(5, math.Abs(p.X)+math.Abs(p.Y)+math.Abs(p.Z))
	return geom.Point3{X: p.X + offset, Y: p.Y + offset, Z: p.Z + offset}
}
