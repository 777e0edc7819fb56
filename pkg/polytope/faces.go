package polytope

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/chazu/feasible/pkg/geom"
)

// Face is one planar facet of the polytope.
type Face struct {
	// Indices are the vertex indices of the face in polygon order.
	Indices  []int         `json:"indices"`
	Polygon  []geom.Point3 `json:"polygon"`
	Normal   geom.Point3   `json:"normal"`
	Centroid geom.Point3   `json:"centroid"`
	// Triangles fans the polygon from its centroid. Winding is
	// counter-clockwise seen from outside.
	Triangles [][3]geom.Point3 `json:"triangles"`
	// Edges are the boundary segments p[m] -> p[m+1].
	Edges [][2]geom.Point3 `json:"edges"`
	// Constraint is the input index of the constraint whose plane supports
	// the face, or -1 for a face of the range box.
	Constraint int    `json:"constraint"`
	Color      string `json:"color"`
}

// reconstructFaces finds every supporting plane through three or more
// vertices and builds the ordered polygon on it.
func reconstructFaces(vertices []geom.Point3, bounds []Bound, tol Tolerances) []Face {
	faces := []Face{}
	n := len(vertices)
	if n < 3 {
		return faces
	}

	vecs := make([]v3.Vec, n)
	for i, p := range vertices {
		vecs[i] = p.Vec()
	}

	var covered [][]bool
	for _, c := range combin.Combinations(n, 3) {
		i, j, k := c[0], c[1], c[2]
		if coveredBy(covered, i, j, k) {
			continue
		}

		normal := vecs[j].Sub(vecs[i]).Cross(vecs[k].Sub(vecs[i]))
		if normal.Length() < tol.Normal {
			continue
		}
		normal = normal.Normalize()

		var pos, neg bool
		on := make([]bool, n)
		var members []int
		for m, v := range vecs {
			d := normal.Dot(v.Sub(vecs[i]))
			switch {
			case math.Abs(d) < tol.Coplanar:
				on[m] = true
				members = append(members, m)
			case d > 0:
				pos = true
			default:
				neg = true
			}
		}
		if pos && neg {
			continue
		}
		if pos {
			normal = normal.Neg()
		}
		covered = append(covered, on)

		faces = append(faces, buildFace(vecs, members, normal, vecs[j].Sub(vecs[i]), bounds, tol))
	}
	return faces
}

func coveredBy(covered [][]bool, i, j, k int) bool {
	for _, on := range covered {
		if on[i] && on[j] && on[k] {
			return true
		}
	}
	return false
}

func buildFace(vecs []v3.Vec, members []int, normal, edge v3.Vec, bounds []Bound, tol Tolerances) Face {
	var sum v3.Vec
	for _, m := range members {
		sum = sum.Add(vecs[m])
	}
	centroid := sum.DivScalar(float64(len(members)))

	u := edge.Normalize()
	v := normal.Cross(u)
	angle := make(map[int]float64, len(members))
	for _, m := range members {
		d := vecs[m].Sub(centroid)
		angle[m] = math.Atan2(d.Dot(v), d.Dot(u))
	}
	sort.SliceStable(members, func(a, b int) bool {
		return angle[members[a]] < angle[members[b]]
	})

	f := Face{
		Indices:    members,
		Polygon:    make([]geom.Point3, len(members)),
		Normal:     geom.FromVec(normal),
		Centroid:   geom.FromVec(centroid),
		Triangles:  make([][3]geom.Point3, len(members)),
		Edges:      make([][2]geom.Point3, len(members)),
		Constraint: -1,
	}
	for a, m := range members {
		f.Polygon[a] = geom.FromVec(vecs[m])
	}
	for a := range f.Polygon {
		next := f.Polygon[(a+1)%len(f.Polygon)]
		f.Triangles[a] = [3]geom.Point3{f.Centroid, f.Polygon[a], next}
		f.Edges[a] = [2]geom.Point3{f.Polygon[a], next}
	}

	if len(bounds) > 0 {
		f.Color = bounds[0].Color
	}
	for _, b := range bounds {
		if b.Degenerate() {
			continue
		}
		if supports(b.Plane(), f.Polygon, tol.Coplanar) {
			f.Constraint = b.Index
			if b.Color != "" {
				f.Color = b.Color
			}
			break
		}
	}
	return f
}

// supports reports whether every point lies within distance tol of pl.
func supports(pl geom.Plane, pts []geom.Point3, tol float64) bool {
	scale := pl.Normal.Vec().Length()
	for _, p := range pts {
		if math.Abs(pl.Residual(p)) >= tol*scale {
			return false
		}
	}
	return true
}
