package kernel

import "math"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	// Lines holds outline segments, 6 floats per segment
	// [ax,ay,az, bx,by,bz, ...]. Optional.
	Lines []float32 `json:"lines"`
	Label string    `json:"label"` // e.g. "face-3" or "region"
	Color string    `json:"color,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// LineCount returns the number of outline segments.
func (m *Mesh) LineCount() int {
	return len(m.Lines) / 6
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounds of the vertices. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (min, max [3]float32, ok bool) {
	if m.IsEmpty() {
		return min, max, false
	}
	copy(min[:], m.Vertices[:3])
	copy(max[:], m.Vertices[:3])
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := m.Vertices[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	return min, max, true
}

// Volume returns the enclosed volume of a closed, outward-wound mesh using
// the divergence theorem. The result is meaningless for open meshes.
func (m *Mesh) Volume() float64 {
	vert := func(i uint32) [3]float64 {
		return [3]float64{
			float64(m.Vertices[3*i]),
			float64(m.Vertices[3*i+1]),
			float64(m.Vertices[3*i+2]),
		}
	}
	var sum float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := vert(m.Indices[t]), vert(m.Indices[t+1]), vert(m.Indices[t+2])
		cross := [3]float64{
			b[1]*c[2] - b[2]*c[1],
			b[2]*c[0] - b[0]*c[2],
			b[0]*c[1] - b[1]*c[0],
		}
		sum += a[0]*cross[0] + a[1]*cross[1] + a[2]*cross[2]
	}
	return sum / 6
}

// VertexNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex, weighted by triangle area. It is
// the fallback for kernels whose meshes carry no normals.
func VertexNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]

		ax, ay, az := float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])
		bx, by, bz := float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])
		cx, cy, cz := float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az

		// Unnormalized face normal.
		nx := float32(e1y*e2z - e1z*e2y)
		ny := float32(e1z*e2x - e1x*e2z)
		nz := float32(e1x*e2y - e1y*e2x)

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		nx, ny, nz := float64(normals[i]), float64(normals[i+1]), float64(normals[i+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i] = float32(nx / length)
			normals[i+1] = float32(ny / length)
			normals[i+2] = float32(nz / length)
		}
	}
	return normals
}
