package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/feasible/pkg/kernel"
	"github.com/chazu/feasible/pkg/kernel/sdfx"
	"github.com/chazu/feasible/pkg/polytope"
	"github.com/chazu/feasible/pkg/problem"
	"github.com/chazu/feasible/pkg/tessellate"
)

// newKernel returns a fresh sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(32)
}

func computeDefault(t *testing.T) polytope.Result {
	t.Helper()
	res := polytope.Compute(polytope.InputFrom(problem.Default()))
	if res.Status != polytope.StatusOK {
		t.Fatalf("status = %s, want ok", res.Status)
	}
	return res
}

func TestFaces(t *testing.T) {
	res := computeDefault(t)
	meshes := tessellate.Faces(res)
	if len(meshes) != len(res.Faces) {
		t.Fatalf("got %d meshes, want %d", len(meshes), len(res.Faces))
	}
	for i, m := range meshes {
		f := res.Faces[i]
		n := len(f.Polygon)
		if m.VertexCount() != n+1 {
			t.Errorf("face %d: vertex count = %d, want %d", i, m.VertexCount(), n+1)
		}
		if m.TriangleCount() != n {
			t.Errorf("face %d: triangle count = %d, want %d", i, m.TriangleCount(), n)
		}
		if m.LineCount() != len(f.Edges) {
			t.Errorf("face %d: line count = %d, want %d", i, m.LineCount(), len(f.Edges))
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("face %d: normals length %d != vertices length %d", i, len(m.Normals), len(m.Vertices))
		}
		if m.Color != f.Color || m.Color == "" {
			t.Errorf("face %d: color = %q, want %q", i, m.Color, f.Color)
		}
		for _, idx := range m.Indices {
			if int(idx) >= m.VertexCount() {
				t.Fatalf("face %d: index %d out of range", i, idx)
			}
		}
	}
}

func TestFacesEmptyResult(t *testing.T) {
	meshes := tessellate.Faces(polytope.Result{})
	if meshes == nil || len(meshes) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", meshes)
	}
}

func TestHalfSpaces(t *testing.T) {
	bounds, _ := polytope.ParseConstraints([]problem.Constraint{
		{Expression: "x + y <= 4", Enabled: true},
		{Expression: "z >= 1", Enabled: true},
		{Expression: "x = 2", Enabled: true},
		{Expression: "y < 3", Enabled: true},
	})
	hs := tessellate.HalfSpaces(bounds)
	want := []kernel.HalfSpace{
		{Normal: [3]float64{1, 1, 0}, Offset: 4},
		{Normal: [3]float64{0, 0, -1}, Offset: -1},
		{Normal: [3]float64{1, 0, 0}, Offset: 2},
		{Normal: [3]float64{-1, 0, 0}, Offset: -2},
		{Normal: [3]float64{0, 1, 0}, Offset: 3},
	}
	if len(hs) != len(want) {
		t.Fatalf("got %d half-spaces, want %d", len(hs), len(want))
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("half-space %d = %+v, want %+v", i, hs[i], want[i])
		}
	}

	// Every vertex of a feasible polytope lies in every half-space.
	res := polytope.Compute(polytope.InputFrom(problem.Default()))
	for _, v := range res.Vertices {
		p := [3]float64{v.X, v.Y, v.Z}
		for j, h := range tessellate.HalfSpaces(res.Parsed) {
			if !h.Contains(p, 1e-9) {
				t.Errorf("vertex %d outside half-space %d", v.Index, j)
			}
		}
	}
}

func TestRegion(t *testing.T) {
	res := computeDefault(t)
	mesh, err := tessellate.Region(res, problem.DefaultRange, newKernel())
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("region mesh is empty")
	}
	if mesh.Label != "region" {
		t.Errorf("label = %q, want region", mesh.Label)
	}

	// The simplex x + y + z <= 10 in the positive octant has volume 1000/6.
	vol := math.Abs(mesh.Volume())
	if math.Abs(vol-1000.0/6)/(1000.0/6) > 0.15 {
		t.Errorf("volume = %f, want about %f", vol, 1000.0/6)
	}

	// The mesh stays inside the range box (marching cubes pads by 1%).
	min, max, _ := mesh.Bounds()
	for a := 0; a < 3; a++ {
		if min[a] < -0.5 || max[a] > 15.5 {
			t.Errorf("axis %d bounds [%f, %f] escape the range box", a, min[a], max[a])
		}
	}
}

func TestRegionWithoutPolytope(t *testing.T) {
	in := polytope.InputFrom(problem.Default())
	in.Constraints = append(in.Constraints, problem.Constraint{Expression: "x >= 50", Enabled: true})
	res := polytope.Compute(in)
	if res.Status != polytope.StatusNoPolytope {
		t.Fatalf("status = %s, want no-polytope", res.Status)
	}
	mesh, err := tessellate.Region(res, problem.DefaultRange, newKernel())
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Error("expected an empty mesh")
	}
}
