package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DeterminantTolerance is the default threshold below which a 3x3 system is
// treated as singular (parallel, coincident or otherwise degenerate planes).
const DeterminantTolerance = 1e-4

// Solve3 intersects three planes using Cramer's rule. It reports false when
// the coefficient determinant is smaller than DeterminantTolerance in
// absolute value.
func Solve3(p, q, r Plane) (Point3, bool) {
	return Solve3Tol(p, q, r, DeterminantTolerance)
}

// Solve3Tol is Solve3 with an explicit determinant tolerance.
func Solve3Tol(p, q, r Plane, tol float64) (Point3, bool) {
	coef := mat.NewDense(3, 3, []float64{
		p.Normal.X, p.Normal.Y, p.Normal.Z,
		q.Normal.X, q.Normal.Y, q.Normal.Z,
		r.Normal.X, r.Normal.Y, r.Normal.Z,
	})
	det := mat.Det(coef)
	if math.Abs(det) < tol || math.IsNaN(det) {
		return Point3{}, false
	}

	rhs := []float64{p.D, q.D, r.D}
	var sol [3]float64
	for col := range sol {
		m := mat.DenseCopyOf(coef)
		m.SetCol(col, rhs)
		sol[col] = mat.Det(m) / det
	}
	return Point3{X: sol[0], Y: sol[1], Z: sol[2]}, true
}
