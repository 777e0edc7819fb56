// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/feasible/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest side of the bounding box.
const DefaultMeshCells = 64

// halfSpaceExtent bounds the otherwise infinite bounding box of a
// half-space.
const halfSpaceExtent = 1e6

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// halfSpace is the SDF3 of n·p <= d with n normalized, so Evaluate returns
// the true signed distance to the boundary plane.
type halfSpace struct {
	n v3.Vec
	d float64
}

func (h *halfSpace) Evaluate(p v3.Vec) float64 {
	return h.n.Dot(p) - h.d
}

func (h *halfSpace) BoundingBox() sdf.Box3 {
	return unboundedBox()
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing with DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given resolution. Values
// below 8 are raised to 8.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the meshing resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates the box spanning min to max. sdf.Box3D centers the box at the
// origin, so it is translated to the midpoint.
func (k *SdfxKernel) Box(min, max [3]float64) kernel.Solid {
	s, err := sdf.Box3D(vec(max[0]-min[0], max[1]-min[1], max[2]-min[2]), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	center := vec((min[0]+max[0])/2, (min[1]+max[1])/2, (min[2]+max[2])/2)
	return wrap(sdf.Transform3D(s, sdf.Translate3d(center)))
}

// HalfSpace creates the half-space h. A zero normal yields a solid that is
// everywhere inside when the offset is non-negative and everywhere outside
// otherwise.
func (k *SdfxKernel) HalfSpace(h kernel.HalfSpace) kernel.Solid {
	n := vec(h.Normal[0], h.Normal[1], h.Normal[2])
	l := n.Length()
	if l == 0 {
		d := -1.0
		if h.Offset < 0 {
			d = 1.0
		}
		return wrap(&constant{d: d})
	}
	return wrap(&halfSpace{n: n.DivScalar(l), d: h.Offset / l})
}

// constant is an SDF3 with the same value everywhere.
type constant struct {
	d float64
}

func (c *constant) Evaluate(v3.Vec) float64 { return c.d }

func (c *constant) BoundingBox() sdf.Box3 {
	return unboundedBox()
}

// Intersection returns the intersection of two solids. sdfx keeps the
// bounding box of a.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes. An empty
// region yields an empty mesh, not an error.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("sdfx: nil solid")
	}
	sdf3 := unwrap(s)
	bb := sdf3.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	if math.Max(size.X, math.Max(size.Y, size.Z)) >= halfSpaceExtent {
		return nil, fmt.Errorf("sdfx: solid is unbounded, intersect it with a box first")
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Label:    "region",
	}, nil
}

func unboundedBox() sdf.Box3 {
	e := vec(halfSpaceExtent, halfSpaceExtent, halfSpaceExtent)
	return sdf.Box3{Min: e.Neg(), Max: e}
}

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}
