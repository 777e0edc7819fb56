package polytope

// Tolerances groups every numeric threshold used by the pipeline. A zero
// field means "use the default".
type Tolerances struct {
	// Feasibility is the slack allowed when testing a point against a
	// constraint, and the distance under which a point is on its plane.
	Feasibility float64 `json:"feasibility"`
	// Range is the slack allowed outside the range box.
	Range float64 `json:"range"`
	// Determinant is the singularity threshold of the 3x3 solver.
	Determinant float64 `json:"determinant"`
	// Dedup is the per-axis distance under which two vertices are the same.
	Dedup float64 `json:"dedup"`
	// Normal is the minimum cross-product length of a face candidate.
	Normal float64 `json:"normal"`
	// Coplanar is the signed-distance band treated as "on the face plane".
	Coplanar float64 `json:"coplanar"`
}

// DefaultTolerances returns the standard thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Feasibility: 1e-3,
		Range:       1e-3,
		Determinant: 1e-4,
		Dedup:       1e-4,
		Normal:      1e-3,
		Coplanar:    1e-2,
	}
}

// withDefaults fills every non-positive field from DefaultTolerances.
func (t Tolerances) withDefaults() Tolerances {
	d := DefaultTolerances()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.Feasibility, d.Feasibility)
	fill(&t.Range, d.Range)
	fill(&t.Determinant, d.Determinant)
	fill(&t.Dedup, d.Dedup)
	fill(&t.Normal, d.Normal)
	fill(&t.Coplanar, d.Coplanar)
	return t
}

const (
	// MinConstraints is the number of usable constraints needed before any
	// vertex search is attempted.
	MinConstraints = 3
	// MinVertices is the smallest vertex count that describes a polytope.
	MinVertices = 4
	// ComplexityCeiling is the parsed-constraint count above which a
	// warning is logged. Enumeration is cubic in the constraint count.
	ComplexityCeiling = 64
)
