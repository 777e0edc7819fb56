package polytope

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/problem"
)

// input builds an Input from constraint texts, all enabled.
func input(rng problem.Range, objective string, dir problem.Direction, exprs ...string) Input {
	p := problem.New()
	for _, e := range exprs {
		p.Add(e, "")
	}
	p.Range = rng
	p.Objective = problem.Objective{Expression: objective, Direction: dir}
	return InputFrom(p)
}

func pt(x, y, z float64) geom.Point3 { return geom.Point3{X: x, Y: y, Z: z} }

func assertPoint(t *testing.T, want, got geom.Point3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-9, msgAndArgs...)
}

func TestTetrahedron(t *testing.T) {
	res := Compute(InputFrom(problem.Default()))

	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Vertices, 4)
	want := []geom.Point3{pt(0, 0, 10), pt(0, 10, 0), pt(10, 0, 0), pt(0, 0, 0)}
	for i, v := range res.Vertices {
		assert.Equal(t, i, v.Index)
		assertPoint(t, want[i], v.Point3, "vertex %d", i)
		assert.True(t, v.FullyFeasible)
		assert.Len(t, v.Checks, 4)
	}

	require.NotNil(t, res.Optimum)
	assert.Equal(t, problem.Maximize, res.Optimum.Direction)
	assert.Equal(t, 0, res.Optimum.VertexIndex, "ties go to the first vertex found")
	assert.InDelta(t, 10, res.Optimum.Value, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 10, 10, 0}, res.Optimum.Values, 1e-9)

	require.Len(t, res.Faces, 4)
	for _, f := range res.Faces {
		assert.Len(t, f.Indices, 3)
		assert.Len(t, f.Triangles, 3)
		assert.Len(t, f.Edges, 3)
	}
	assert.Empty(t, res.Skipped)
	assert.Len(t, res.Parsed, 4)
	assert.Equal(t, 20.0, res.Extent)
}

func TestMinimize(t *testing.T) {
	in := InputFrom(problem.Default())
	in.Objective.Direction = problem.Minimize
	res := Compute(in)
	require.NotNil(t, res.Optimum)
	assert.Equal(t, 3, res.Optimum.VertexIndex)
	assert.InDelta(t, 0, res.Optimum.Value, 1e-9)
	assertPoint(t, pt(0, 0, 0), res.Optimum.Vertex)
}

func TestCube(t *testing.T) {
	res := Compute(input(problem.Range{Min: 0, Max: 2}, "x", problem.Maximize,
		"x >= 0", "x <= 1", "y >= 0", "y <= 1", "z >= 0", "z <= 1"))

	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Vertices, 8)
	require.Len(t, res.Faces, 6)
	for _, f := range res.Faces {
		require.Len(t, f.Polygon, 4)
		for a := range f.Polygon {
			b := (a + 1) % len(f.Polygon)
			d := f.Polygon[a].Vec().Sub(f.Polygon[b].Vec()).Length()
			assert.InDelta(t, 1, d, 1e-9, "polygon must be ordered around its boundary")
		}
		assert.GreaterOrEqual(t, f.Constraint, 0, "every cube face lies on a constraint plane")
	}
}

func TestFacesOutwardAndWound(t *testing.T) {
	inputs := map[string]Input{
		"tetrahedron": InputFrom(problem.Default()),
		"cube": input(problem.Range{Min: 0, Max: 2}, "x", problem.Maximize,
			"x >= 0", "x <= 1", "y >= 0", "y <= 1", "z >= 0", "z <= 1"),
		"truncated": input(problem.Range{Min: 0, Max: 10}, "x", problem.Maximize,
			"x + y + z <= 25", "x >= 0", "y >= 0", "z >= 0"),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			res := Compute(in)
			require.Equal(t, StatusOK, res.Status)

			var sum geom.Point3
			for _, v := range res.Vertices {
				sum.X += v.X
				sum.Y += v.Y
				sum.Z += v.Z
			}
			n := float64(len(res.Vertices))
			center := pt(sum.X/n, sum.Y/n, sum.Z/n).Vec()

			for i, f := range res.Faces {
				normal := f.Normal.Vec()
				assert.InDelta(t, 1, normal.Length(), 1e-9)
				assert.Greater(t, normal.Dot(f.Centroid.Vec().Sub(center)), 0.0, "face %d normal points inward", i)
				for _, tri := range f.Triangles {
					c := tri[1].Vec().Sub(tri[0].Vec()).Cross(tri[2].Vec().Sub(tri[0].Vec()))
					assert.Greater(t, c.Dot(normal), 0.0, "face %d fan is wound clockwise", i)
				}
			}
		})
	}
}

func TestRangeBoundaryVertices(t *testing.T) {
	res := Compute(input(problem.Range{Min: 0, Max: 10}, "x + y + z", problem.Maximize,
		"x + y + z <= 25", "x >= 0", "y >= 0", "z >= 0"))

	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Vertices, 10)
	require.Len(t, res.Faces, 7)

	pts := res.Points()
	for _, want := range []geom.Point3{
		pt(0, 0, 10), pt(10, 10, 0), pt(10, 10, 5), pt(5, 10, 10),
	} {
		found := false
		for _, p := range pts {
			if p.ChebyshevDistance(want) < 1e-9 {
				found = true
			}
		}
		assert.True(t, found, "missing range-boundary vertex %v", want)
	}

	sizes := map[int]int{}
	boxFaces := 0
	for _, f := range res.Faces {
		sizes[len(f.Indices)]++
		if f.Constraint < 0 {
			boxFaces++
		}
	}
	assert.Equal(t, map[int]int{3: 1, 4: 3, 5: 3}, sizes)
	assert.Equal(t, 3, boxFaces)
	assert.InDelta(t, 25, res.Optimum.Value, 1e-9)
}

func TestPyramidApexDeduplicated(t *testing.T) {
	res := Compute(input(problem.Range{Min: 0, Max: 10}, "z", problem.Maximize,
		"z - x <= 0", "x + z <= 10", "z - y <= 0", "y + z <= 10", "z >= 0"))

	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Vertices, 5)
	assertPoint(t, pt(5, 5, 5), res.Vertices[0].Point3)
	assert.Len(t, res.Faces, 5)
	assert.Equal(t, 0, res.Optimum.VertexIndex)
}

func TestInfeasible(t *testing.T) {
	res := Compute(input(problem.DefaultRange, "x", problem.Maximize,
		"x <= 1", "x >= 5", "y >= 0", "z >= 0"))
	assert.Equal(t, StatusNoPolytope, res.Status)
	assert.Empty(t, res.Vertices)
	assert.Empty(t, res.Faces)
	assert.Nil(t, res.Optimum)
}

func TestTooFewConstraints(t *testing.T) {
	in := input(problem.DefaultRange, "x", problem.Maximize,
		"x >= 0", "y >= 0", "z >= ", "5 <= 10")
	res := Compute(in)
	assert.Equal(t, StatusTooFewConstraints, res.Status)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Index)
	assert.Equal(t, "z >= ", res.Skipped[0].Expression)
	assert.Len(t, res.Parsed, 3, "the degenerate constraint still parses")
}

func TestDisabledConstraintsIgnored(t *testing.T) {
	p := problem.Default()
	p.Add("x >= 100", "")
	p.Constraints[4].Enabled = false
	res := Compute(InputFrom(p))
	assert.Len(t, res.Vertices, 4)
	assert.Len(t, res.Parsed, 4)
}

func TestDegenerateConstraints(t *testing.T) {
	t.Run("false constant", func(t *testing.T) {
		p := problem.Default()
		p.Add("0 >= 10", "")
		res := Compute(InputFrom(p))
		assert.Equal(t, StatusNoPolytope, res.Status)
	})
	t.Run("true constant", func(t *testing.T) {
		p := problem.Default()
		p.Add("0x <= 3", "")
		res := Compute(InputFrom(p))
		require.Len(t, res.Vertices, 4)
		assert.Len(t, res.Vertices[0].Checks, 5)
		assert.True(t, res.Vertices[0].FullyFeasible)
	})
}

func TestBadObjective(t *testing.T) {
	for _, obj := range []string{"", "42", "x + .y"} {
		in := InputFrom(problem.Default())
		in.Objective.Expression = obj
		res := Compute(in)
		assert.Len(t, res.Vertices, 4, "objective %q", obj)
		assert.Nil(t, res.Optimum, "objective %q", obj)
	}
}

func TestInvalidRange(t *testing.T) {
	in := InputFrom(problem.Default())
	in.Range = problem.Range{Min: 5, Max: 5}
	res := Compute(in)
	assert.Equal(t, StatusInvalidRange, res.Status)
	assert.Empty(t, res.Vertices)
}

func randomInput(rnd *rand.Rand) Input {
	exprs := []string{"x >= 0", "y >= 0", "z >= 0"}
	for i := 0; i < 3+rnd.Intn(5); i++ {
		a, b, c := rnd.Intn(7)-1, rnd.Intn(7)-1, rnd.Intn(7)-1
		d := 5 + rnd.Intn(40)
		exprs = append(exprs, fmt.Sprintf("%dx + %dy + %dz <= %d", a, b, c, d))
	}
	return input(problem.Range{Min: 0, Max: 12}, "x + 2y - z", problem.Maximize, exprs...)
}

func TestDeterminism(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		in := randomInput(rnd)
		a, b := Compute(in), Compute(in)
		assert.Equal(t, a, b, "case %d", i)
	}
}

func TestVertexInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	tol := DefaultTolerances()
	for i := 0; i < 30; i++ {
		in := randomInput(rnd)
		res := Compute(in)
		planes := planesOf(res.Parsed)
		axis := geom.AxisPlanes(in.Range.Min, in.Range.Max)
		planes = append(planes, axis[:]...)

		for a, va := range res.Vertices {
			assert.True(t, va.FullyFeasible)
			assert.GreaterOrEqual(t, PlanesThrough(planes, va.Point3, tol.Feasibility), 3)
			for _, c := range []float64{va.X, va.Y, va.Z} {
				assert.True(t, in.Range.Contains(c, tol.Range))
			}
			for _, vb := range res.Vertices[a+1:] {
				assert.GreaterOrEqual(t, va.ChebyshevDistance(vb.Point3), tol.Dedup,
					"case %d: vertices %d and %d are duplicates", i, va.Index, vb.Index)
			}
		}
	}
}

func TestTighteningNeverAddsVertices(t *testing.T) {
	prev := -1
	for _, d := range []string{"3", "2", "1", "0.5", "0", "-1"} {
		res := Compute(input(problem.Range{Min: 0, Max: 5}, "x", problem.Maximize,
			"x >= 0", "y >= 0", "z >= 0", "y <= 1", "z <= 1", "x <= "+d))
		if prev >= 0 {
			assert.LessOrEqual(t, len(res.Vertices), prev, "x <= %s", d)
		}
		prev = len(res.Vertices)
	}
	assert.Equal(t, 0, prev)

	prev = -1
	for _, d := range []string{"10", "8", "5", "2"} {
		p := problem.Default()
		p.Constraints[0].Expression = "x + y + z <= " + d
		n := len(Compute(InputFrom(p)).Vertices)
		if prev >= 0 {
			assert.LessOrEqual(t, n, prev)
		}
		prev = n
	}
}

func TestTightenedRegionIsContained(t *testing.T) {
	loose := input(problem.Range{Min: 0, Max: 12}, "x", problem.Maximize,
		"x >= 0", "y >= 0", "z >= 0", "x + 2y + z <= 20", "x - y <= 6")
	tight := input(problem.Range{Min: 0, Max: 12}, "x", problem.Maximize,
		"x >= 0", "y >= 0", "z >= 0", "x + 2y + z <= 11", "x - y <= 6")

	looseBounds, _ := ParseConstraints(loose.Constraints)
	for _, v := range Compute(tight).Vertices {
		assert.True(t, SatisfiesAll(looseBounds, v.Point3, 1e-3), "tight vertex %v outside loose region", v.Point3)
	}
}

func TestResultJSONUsesEmptyArrays(t *testing.T) {
	res := Compute(input(problem.DefaultRange, "x", problem.Maximize, "x >= 0"))
	data, err := json.Marshal(res)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"vertices":[]`)
	assert.Contains(t, s, `"faces":[]`)
	assert.Contains(t, s, `"skipped":[]`)
	assert.Contains(t, s, `"optimum":null`)
}

func TestExtentAndFocus(t *testing.T) {
	bounds, _ := ParseConstraints([]problem.Constraint{
		{Expression: "x <= 40", Enabled: true},
		{Expression: "0 <= 100", Enabled: true},
	})
	assert.Equal(t, 60.0, Extent(problem.Range{Min: -5, Max: 5}, bounds))
	assert.Equal(t, 30.0, Extent(problem.Range{Min: -30, Max: 5}, nil))
	assert.Equal(t, float64(MinExtent), Extent(problem.Range{Min: 0, Max: 1}, nil))

	assertPoint(t, pt(2, 2, 2), FocusPosition(pt(0, 0, 0)))
	assertPoint(t, pt(14, 4, 4), FocusPosition(pt(10, 0, 0)))
}
