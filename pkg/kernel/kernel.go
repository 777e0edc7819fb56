// Package kernel defines the abstract geometry kernel used to render the
// feasible region as a solid. A region is built as the intersection of the
// range box with one half-space per constraint; implementations (sdfx)
// provide the solid representation and meshing behind this interface.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// HalfSpace is the closed set of points p with Normal·p <= Offset.
type HalfSpace struct {
	Normal [3]float64 `json:"normal"`
	Offset float64    `json:"offset"`
}

// Flip returns the complementary closed half-space Normal·p >= Offset.
func (h HalfSpace) Flip() HalfSpace {
	return HalfSpace{
		Normal: [3]float64{-h.Normal[0], -h.Normal[1], -h.Normal[2]},
		Offset: -h.Offset,
	}
}

// Contains reports whether p lies in the half-space within tol.
func (h HalfSpace) Contains(p [3]float64, tol float64) bool {
	return h.Normal[0]*p[0]+h.Normal[1]*p[1]+h.Normal[2]*p[2] <= h.Offset+tol
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box is the axis-aligned box spanning min to max.
	Box(min, max [3]float64) Solid
	// HalfSpace is an unbounded half-space. It is only meaningful
	// intersected with a bounded solid.
	HalfSpace(h HalfSpace) Solid

	// Intersection keeps the bounding box of a, so a should be the bounded
	// operand.
	Intersection(a, b Solid) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Region intersects box with every half-space in order.
func Region(k Kernel, box Solid, hs []HalfSpace) Solid {
	s := box
	for _, h := range hs {
		s = k.Intersection(s, k.HalfSpace(h))
	}
	return s
}
