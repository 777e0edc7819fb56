// Package tessellate turns a computed polytope into triangle meshes for
// rendering: one flat mesh per face, and optionally a volume mesh of the
// whole region produced by a geometry kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/feasible/pkg/expr"
	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/kernel"
	"github.com/chazu/feasible/pkg/polytope"
	"github.com/chazu/feasible/pkg/problem"
)

// Faces produces one mesh per face of res. Each mesh is the face's triangle
// fan: vertex 0 is the centroid, vertices 1..n the polygon. Every vertex
// carries the face normal and the outline is emitted as line segments.
func Faces(res polytope.Result) []*kernel.Mesh {
	meshes := make([]*kernel.Mesh, 0, len(res.Faces))
	for i, f := range res.Faces {
		meshes = append(meshes, faceMesh(i, f))
	}
	return meshes
}

func faceMesh(i int, f polytope.Face) *kernel.Mesh {
	n := len(f.Polygon)
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 3*(n+1)),
		Normals:  make([]float32, 0, 3*(n+1)),
		Indices:  make([]uint32, 0, 3*n),
		Lines:    make([]float32, 0, 6*len(f.Edges)),
		Label:    fmt.Sprintf("face-%d", i),
		Color:    f.Color,
	}
	nx, ny, nz := float32(f.Normal.X), float32(f.Normal.Y), float32(f.Normal.Z)
	for _, p := range append([]geom.Point3{f.Centroid}, f.Polygon...) {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, nx, ny, nz)
	}
	for a := 0; a < n; a++ {
		m.Indices = append(m.Indices, 0, uint32(1+a), uint32(1+(a+1)%n))
	}
	for _, e := range f.Edges {
		m.Lines = append(m.Lines,
			float32(e[0].X), float32(e[0].Y), float32(e[0].Z),
			float32(e[1].X), float32(e[1].Y), float32(e[1].Z))
	}
	return m
}

// HalfSpaces converts parsed bounds to kernel half-spaces. "<=" and "<"
// map directly, ">=" and ">" are flipped, and "=" becomes a pair.
func HalfSpaces(bounds []polytope.Bound) []kernel.HalfSpace {
	var hs []kernel.HalfSpace
	for _, b := range bounds {
		h := kernel.HalfSpace{Normal: [3]float64{b.A, b.B, b.C}, Offset: b.D}
		switch b.Op {
		case expr.OpLE, expr.OpLT:
			hs = append(hs, h)
		case expr.OpGE, expr.OpGT:
			hs = append(hs, h.Flip())
		case expr.OpEQ:
			hs = append(hs, h, h.Flip())
		}
	}
	return hs
}

// Region meshes the feasible region of res inside the range box with k. A
// result without a polytope yields an empty mesh without invoking the
// kernel.
func Region(res polytope.Result, rng problem.Range, k kernel.Kernel) (*kernel.Mesh, error) {
	if res.Status != polytope.StatusOK {
		return &kernel.Mesh{Label: "region"}, nil
	}
	box := k.Box(
		[3]float64{rng.Min, rng.Min, rng.Min},
		[3]float64{rng.Max, rng.Max, rng.Max},
	)
	solid := kernel.Region(k, box, HalfSpaces(res.Parsed))
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: region: %w", err)
	}
	mesh.Label = "region"
	return mesh, nil
}
