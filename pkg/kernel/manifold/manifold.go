//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Regions are cut
// from the range box with exact plane trims, so faces come out flat
// instead of the marching-cubes approximation of the sdfx kernel.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/feasible/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)
var _ kernel.Solid = (*planeSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// planeSolid is a half-space. Manifold has no unbounded solids, so it stays
// symbolic until it is intersected with a bounded solid, which becomes a
// plane trim.
type planeSolid struct {
	h kernel.HalfSpace
}

// BoundingBox is unbounded.
func (s *planeSolid) BoundingBox() (min, max [3]float64) {
	inf := math.Inf(1)
	return [3]float64{-inf, -inf, -inf}, [3]float64{inf, inf, inf}
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Box creates the axis-aligned box spanning min to max.
func (k *ManifoldKernel) Box(min, max [3]float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	cube := C.manifold_cube(alloc,
		C.double(max[0]-min[0]), C.double(max[1]-min[1]), C.double(max[2]-min[2]),
		C.int(0), // center=false: spans the origin to the size
	)
	defer C.manifold_delete_manifold(cube)

	moved := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(moved, cube,
		C.double(min[0]), C.double(min[1]), C.double(min[2]),
	)
	return newSolid(ptr)
}

// HalfSpace returns a symbolic half-space.
func (k *ManifoldKernel) HalfSpace(h kernel.HalfSpace) kernel.Solid {
	return &planeSolid{h: h}
}

// Intersection returns the boolean intersection of two solids. A
// half-space operand trims the other operand by its boundary plane.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	if p, ok := b.(*planeSolid); ok {
		return trim(a.(*manifoldSolid), p.h)
	}
	if p, ok := a.(*planeSolid); ok {
		return trim(b.(*manifoldSolid), p.h)
	}
	sa := a.(*manifoldSolid)
	sb := b.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// trim keeps the part of s with Normal·p <= Offset. Manifold keeps the side
// the plane normal points to, so the half-space is flipped first.
func trim(s *manifoldSolid, h kernel.HalfSpace) kernel.Solid {
	n := h.Normal
	length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length < 1e-12 {
		// 0 <= Offset holds everywhere or nowhere.
		if h.Offset >= 0 {
			return s
		}
		return newSolid(C.manifold_empty(C.manifold_alloc_manifold()))
	}
	f := h.Flip()
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_trim_by_plane(alloc, s.ptr,
		C.double(f.Normal[0]/length), C.double(f.Normal[1]/length), C.double(f.Normal[2]/length),
		C.double(f.Offset/length),
	)
	return newSolid(ptr)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex positions and normals are interleaved in MeshGL; this
// method separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, errors.New("manifold: nil solid")
	}
	if _, ok := s.(*planeSolid); ok {
		return nil, errors.New("manifold: cannot mesh an unbounded half-space")
	}
	ms := s.(*manifoldSolid)

	// Get MeshGL from the manifold.
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{Label: "region"}, nil
	}

	// MeshGL stores vertex properties in a flat float array. The first 3
	// are always position (x, y, z); normals follow at 3, 4, 5 if present.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = kernel.VertexNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Label:    "region",
	}
	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}
	return mesh, nil
}
