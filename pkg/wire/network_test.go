package wire_test

import (
	"errors"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/wirelattice/pkg/wire"
	"github.com/chazu/wirelattice/pkg/wire/wiretest"
)

func TestComputeConnectivity_Errors(t *testing.T) {
	vs := []v3.Vec{{X: 0}, {X: 1}, {X: 2}}
	cases := []struct {
		name  string
		edges [][2]int
	}{
		{"OutOfRange", [][2]int{{0, 3}}},
		{"Negative", [][2]int{{-1, 0}}},
		{"ZeroLength", [][2]int{{1, 1}}},
		{"Duplicate", [][2]int{{0, 1}, {1, 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := wire.New(vs, tc.edges)
			err := n.ComputeConnectivity()
			if !errors.Is(err, wire.ErrTopology) {
				t.Fatalf("ComputeConnectivity() error = %v; want ErrTopology", err)
			}
			assert.False(t, n.HasConnectivity())
		})
	}
}

func TestComputeConnectivity_Adjacency(t *testing.T) {
	n := wiretest.Cube()
	require.NoError(t, n.ComputeConnectivity())
	require.Equal(t, 8, n.NumVertices())
	require.Equal(t, 12, n.NumEdges())
	for v := 0; v < n.NumVertices(); v++ {
		assert.Equal(t, 3, n.Degree(v), "vertex %d", v)
	}
	for _, e := range n.Incident(0) {
		ends := n.Edge(e)
		assert.True(t, ends[0] == 0 || ends[1] == 0)
	}
}

func TestScaleFit(t *testing.T) {
	n := wiretest.Cube()
	require.NoError(t, n.ComputeConnectivity())
	lo := v3.Vec{X: -2.5, Y: -1, Z: 0}
	hi := v3.Vec{X: 2.5, Y: 1, Z: 10}
	require.NoError(t, n.ScaleFit(lo, hi))

	bb := n.BoundingBox()
	assert.InDelta(t, lo.X, bb.Min.X, 1e-12)
	assert.InDelta(t, lo.Y, bb.Min.Y, 1e-12)
	assert.InDelta(t, lo.Z, bb.Min.Z, 1e-12)
	assert.InDelta(t, hi.X, bb.Max.X, 1e-12)
	assert.InDelta(t, hi.Y, bb.Max.Y, 1e-12)
	assert.InDelta(t, hi.Z, bb.Max.Z, 1e-12)
	assert.Equal(t, sdf.Box3{Min: lo, Max: hi}, n.Cell())

	// Topology is untouched.
	assert.Equal(t, wiretest.Cube().Edges(), n.Edges())
	assert.Equal(t, 3, n.Degree(7))
}

func TestScaleFit_Degenerate(t *testing.T) {
	flat := wire.New([]v3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, [][2]int{{0, 1}, {1, 2}})
	err := flat.ScaleFit(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	if !errors.Is(err, wire.ErrGeometry) {
		t.Fatalf("ScaleFit(flat) error = %v; want ErrGeometry", err)
	}

	empty := wire.New(nil, nil)
	err = empty.ScaleFit(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	if !errors.Is(err, wire.ErrGeometry) {
		t.Fatalf("ScaleFit(empty) error = %v; want ErrGeometry", err)
	}
}

func TestApplyOffset(t *testing.T) {
	n := wiretest.Cross()
	off := wire.ZeroOffset(n)
	off[0] = v3.Vec{X: 0.1}
	require.NoError(t, n.ApplyOffset(off))
	assert.InDelta(t, 0.6, n.Vertex(0).X, 1e-12)

	err := n.ApplyOffset(off[:2])
	assert.True(t, errors.Is(err, wire.ErrTopology))
}

func TestClone_IsIndependent(t *testing.T) {
	n := wiretest.Cross()
	require.NoError(t, n.ComputeConnectivity())
	c := n.Clone()
	vs := c.Vertices()
	vs[0] = v3.Vec{}
	require.NoError(t, c.SetVertices(vs))
	assert.InDelta(t, 0.5, n.Vertex(0).X, 1e-12)
	assert.True(t, c.HasConnectivity())
}

func TestThicknessField_Check(t *testing.T) {
	n := wiretest.Cross()
	assert.NoError(t, wire.UniformThickness(n, 0.2).Check(n))

	short := wire.ThicknessField{Type: wire.PerVertex, Values: []float64{0.1}}
	assert.True(t, errors.Is(short.Check(n), wire.ErrGeometry))

	neg := wire.UniformThickness(n, 0.2)
	neg.Values[3] = -1
	assert.True(t, errors.Is(neg.Check(n), wire.ErrGeometry))
}

func TestThicknessField_Radii(t *testing.T) {
	n := wiretest.Cross()
	perVertex := wire.ThicknessField{Type: wire.PerVertex, Values: []float64{1, 2, 3, 4, 5, 6, 7}}
	r0, r1 := perVertex.Radii(n, 2)
	assert.Equal(t, 1.0, r0)
	assert.Equal(t, 4.0, r1)

	perEdge := wire.UniformThickness(n, 0.3)
	r0, r1 = perEdge.Radii(n, 5)
	assert.Equal(t, 0.3, r0)
	assert.Equal(t, 0.3, r1)
}
