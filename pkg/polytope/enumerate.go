package polytope

import (
	"gonum.org/v1/gonum/stat/combin"

	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/problem"
)

// enumerator finds the vertices of the region cut out of the range box by a
// set of bounds.
//
// Candidate points come from four stages, in order:
//
//  1. every triple of constraint planes
//  2. every pair of constraint planes with each of the six range planes
//  3. every constraint plane with each pair of range planes
//  4. every triple of range planes (the box corners)
//
// Stages 3 and 4 recover the corners of a region truncated by the range box,
// which stages 1 and 2 alone cannot produce.
type enumerator struct {
	bounds []Bound
	planes []geom.Plane // constraint planes followed by the six range planes
	nCons  int
	rng    problem.Range
	tol    Tolerances

	seen     *vertexIndex
	vertices []geom.Point3

	solved   int
	rejected int
}

func newEnumerator(bounds []Bound, rng problem.Range, tol Tolerances) *enumerator {
	cons := planesOf(bounds)
	axis := geom.AxisPlanes(rng.Min, rng.Max)
	planes := make([]geom.Plane, 0, len(cons)+len(axis))
	planes = append(planes, cons...)
	planes = append(planes, axis[:]...)
	return &enumerator{
		bounds: bounds,
		planes: planes,
		nCons:  len(cons),
		rng:    rng,
		tol:    tol,
		seen:   newVertexIndex(tol.Dedup),
	}
}

// run executes every stage and returns the accepted vertices in discovery
// order.
func (e *enumerator) run() []geom.Point3 {
	cons := e.planes[:e.nCons]
	axis := e.planes[e.nCons:]

	if e.nCons >= 3 {
		for _, c := range combin.Combinations(e.nCons, 3) {
			e.try(cons[c[0]], cons[c[1]], cons[c[2]])
		}
	}
	if e.nCons >= 2 {
		for _, c := range combin.Combinations(e.nCons, 2) {
			for _, a := range axis {
				e.try(cons[c[0]], cons[c[1]], a)
			}
		}
	}
	axisPairs := combin.Combinations(len(axis), 2)
	for _, p := range cons {
		for _, c := range axisPairs {
			e.try(p, axis[c[0]], axis[c[1]])
		}
	}
	for _, c := range combin.Combinations(len(axis), 3) {
		e.try(axis[c[0]], axis[c[1]], axis[c[2]])
	}
	return e.vertices
}

func (e *enumerator) try(p, q, r geom.Plane) {
	pt, ok := geom.Solve3Tol(p, q, r, e.tol.Determinant)
	if !ok {
		return
	}
	e.solved++
	if !e.accept(pt) {
		e.rejected++
		return
	}
	if e.seen.find(pt) >= 0 {
		return
	}
	e.seen.add(pt, len(e.vertices))
	e.vertices = append(e.vertices, pt)
}

// accept applies the range, feasibility and bounding-plane tests.
func (e *enumerator) accept(pt geom.Point3) bool {
	for _, v := range [3]float64{pt.X, pt.Y, pt.Z} {
		if !e.rng.Contains(v, e.tol.Range) {
			return false
		}
	}
	if !SatisfiesAll(e.bounds, pt, e.tol.Feasibility) {
		return false
	}
	return PlanesThrough(e.planes, pt, e.tol.Feasibility) >= 3
}
