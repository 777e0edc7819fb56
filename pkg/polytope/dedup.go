package polytope

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/feasible/pkg/geom"
)

// vertexIndex answers "is there already a vertex within tol of p on every
// axis" using an R-tree of tolerance boxes.
type vertexIndex struct {
	tree *rtreego.Rtree
	half float64
}

type indexedPoint struct {
	rect  rtreego.Rect
	index int
}

func (ip *indexedPoint) Bounds() rtreego.Rect { return ip.rect }

// newVertexIndex returns an empty index. Two points are duplicates when their
// Chebyshev distance is below tol: each point is stored as a box of half-width
// tol/2 and rtreego treats touching boxes as disjoint.
func newVertexIndex(tol float64) *vertexIndex {
	return &vertexIndex{
		tree: rtreego.NewTree(3, 25, 50),
		half: tol / 2,
	}
}

func (vi *vertexIndex) box(p geom.Point3) rtreego.Rect {
	return rtreego.Point{p.X, p.Y, p.Z}.ToRect(vi.half)
}

// find returns the index of a stored point near p, or -1.
func (vi *vertexIndex) find(p geom.Point3) int {
	hits := vi.tree.SearchIntersect(vi.box(p))
	if len(hits) == 0 {
		return -1
	}
	best := hits[0].(*indexedPoint).index
	for _, h := range hits[1:] {
		if i := h.(*indexedPoint).index; i < best {
			best = i
		}
	}
	return best
}

// add stores p under index i.
func (vi *vertexIndex) add(p geom.Point3, i int) {
	vi.tree.Insert(&indexedPoint{rect: vi.box(p), index: i})
}

// len returns the number of stored points.
func (vi *vertexIndex) len() int {
	return vi.tree.Size()
}
