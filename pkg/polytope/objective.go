package polytope

import (
	"github.com/chazu/feasible/pkg/expr"
	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/problem"
)

// Optimum is the best vertex for the objective.
type Optimum struct {
	Direction   problem.Direction `json:"direction"`
	VertexIndex int               `json:"vertexIndex"`
	Value       float64           `json:"value"`
	Vertex      geom.Point3       `json:"vertex"`
	// Values holds the objective at every vertex, in vertex order.
	Values []float64 `json:"values"`
}

// Optimize evaluates the objective text at every vertex and picks the
// greatest (Maximize) or least (Minimize) value. Ties go to the vertex found
// first. It returns nil when there are no vertices or the objective does not
// parse.
func Optimize(objective string, dir problem.Direction, vertices []geom.Point3) *Optimum {
	if len(vertices) == 0 {
		return nil
	}
	f, err := expr.ParseObjective(objective)
	if err != nil {
		Logger().Debug("objective ignored", "expression", objective, "err", err)
		return nil
	}
	return optimize(f, dir, vertices)
}

func optimize(f expr.LinearForm, dir problem.Direction, vertices []geom.Point3) *Optimum {
	better := func(v, best float64) bool { return v > best }
	if dir == problem.Minimize {
		better = func(v, best float64) bool { return v < best }
	} else {
		dir = problem.Maximize
	}

	values := make([]float64, len(vertices))
	best := 0
	for i, p := range vertices {
		values[i] = f.At(p.X, p.Y, p.Z)
		if i > 0 && better(values[i], values[best]) {
			best = i
		}
	}
	return &Optimum{
		Direction:   dir,
		VertexIndex: best,
		Value:       values[best],
		Vertex:      vertices[best],
		Values:      values,
	}
}
