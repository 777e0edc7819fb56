// Package geom holds the small amount of 3D geometry the feasibility engine
// needs: points, planes and the 3x3 plane-intersection solver.
package geom

import (
	"math"

	"github.com/chazu/feasible/pkg/expr"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point3 is a point (or vector) in x, y, z space.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts p to an sdfx vector for vector arithmetic.
func (p Point3) Vec() v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// FromVec converts an sdfx vector to a Point3.
func FromVec(v v3.Vec) Point3 {
	return Point3{X: v.X, Y: v.Y, Z: v.Z}
}

// ChebyshevDistance returns the largest per-axis difference between p and q.
func (p Point3) ChebyshevDistance(q Point3) float64 {
	return math.Max(math.Abs(p.X-q.X), math.Max(math.Abs(p.Y-q.Y), math.Abs(p.Z-q.Z)))
}

// Plane is the set of points p with Normal·p = D.
type Plane struct {
	Normal Point3  `json:"normal"`
	D      float64 `json:"d"`
}

// PlaneOf returns the boundary plane of an inequality.
func PlaneOf(q expr.Inequality) Plane {
	return Plane{Normal: Point3{X: q.A, Y: q.B, Z: q.C}, D: q.D}
}

// Eval returns Normal·p.
func (pl Plane) Eval(p Point3) float64 {
	return pl.Normal.X*p.X + pl.Normal.Y*p.Y + pl.Normal.Z*p.Z
}

// Residual returns Normal·p − D.
func (pl Plane) Residual(p Point3) float64 {
	return pl.Eval(p) - pl.D
}

// Contains reports whether p lies on the plane within tol, measured on the
// unnormalized residual.
func (pl Plane) Contains(p Point3, tol float64) bool {
	return math.Abs(pl.Residual(p)) < tol
}

// AxisPlanes returns the six faces of the cube [min, max]^3 in the order
// x=min, x=max, y=min, y=max, z=min, z=max.
func AxisPlanes(min, max float64) [6]Plane {
	return [6]Plane{
		{Normal: Point3{X: 1}, D: min},
		{Normal: Point3{X: 1}, D: max},
		{Normal: Point3{Y: 1}, D: min},
		{Normal: Point3{Y: 1}, D: max},
		{Normal: Point3{Z: 1}, D: min},
		{Normal: Point3{Z: 1}, D: max},
	}
}
