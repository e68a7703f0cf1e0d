package wire_test

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/wirelattice/pkg/wire"
	"github.com/chazu/wirelattice/pkg/wire/wiretest"
)

const tol = 1e-6

func fitted(t *testing.T, n *wire.Network) *wire.Network {
	t.Helper()
	n, err := wiretest.Fit(n, 2.5)
	require.NoError(t, err)
	return n
}

func TestLattice_RequiresConnectivity(t *testing.T) {
	_, err := wiretest.Cube().Lattice(tol)
	assert.True(t, errors.Is(err, wire.ErrTopology))
}

func TestLattice_CubeCornersMerge(t *testing.T) {
	n := fitted(t, wiretest.Cube())
	lat, err := n.Lattice(tol)
	require.NoError(t, err)

	require.Len(t, lat.Nodes, 1, "all corners are one lattice node")
	node := lat.Nodes[0]
	assert.Equal(t, 0, node.Rep)
	assert.Len(t, node.Members, 8)
	assert.Equal(t, 6, node.Degree(), "±x, ±y, ±z")

	canonical := 0
	for e := 0; e < n.NumEdges(); e++ {
		if lat.Canonical(e) {
			canonical++
		} else {
			assert.Less(t, lat.DuplicateOf[e], e)
			assert.True(t, lat.Canonical(lat.DuplicateOf[e]))
		}
	}
	assert.Equal(t, 3, canonical)
}

func TestLattice_CrossFaceCentresMerge(t *testing.T) {
	n := fitted(t, wiretest.Cross())
	lat, err := n.Lattice(tol)
	require.NoError(t, err)

	require.Len(t, lat.Nodes, 4)
	assert.Equal(t, 6, lat.Nodes[lat.NodeOf[0]].Degree())
	for v := 1; v <= 6; v++ {
		node := lat.Nodes[lat.NodeOf[v]]
		assert.Equal(t, 2, node.Degree(), "face centre %d", v)
		d0, d1 := node.Arms[0].Direction(), node.Arms[1].Direction()
		assert.InDelta(t, -1, d0.Dot(d1), 1e-12, "arms are opposite")
	}
	for e := 0; e < n.NumEdges(); e++ {
		assert.True(t, lat.Canonical(e))
	}
}

func TestLattice_ArmShiftsLandOnNode(t *testing.T) {
	n := fitted(t, wiretest.Diamond())
	lat, err := n.Lattice(tol)
	require.NoError(t, err)
	for _, node := range lat.Nodes {
		assert.Equal(t, 4, node.Degree(), "diamond nodes are tetrahedral")
		for _, arm := range node.Arms {
			p := n.Vertex(arm.Vertex).Add(arm.Shift)
			assert.InDelta(t, 0, p.Sub(node.Position).Length(), 1e-9)
		}
	}
}

func TestMinimumImage(t *testing.T) {
	period := v3.Vec{X: 5, Y: 5, Z: 5}
	d := wire.MinimumImage(v3.Vec{X: 4.9, Y: -5, Z: 0.2}, period)
	assert.InDelta(t, -0.1, d.X, 1e-12)
	assert.InDelta(t, 0, d.Y, 1e-12)
	assert.InDelta(t, 0.2, d.Z, 1e-12)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		build func() *wire.Network
		ok    bool
	}{
		{"Cube", wiretest.Cube, true},
		{"Brick", func() *wire.Network { return wiretest.Brick(3) }, true},
		{"Star", wiretest.Star, true},
		{"Diamond", wiretest.Diamond, true},
		{"Crossed", wiretest.Crossed, false},
		{"Doubled", wiretest.Doubled, false},
		{"Overlapping", wiretest.Overlapping, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := fitted(t, tc.build())
			errs := n.Validate(tol)
			if tc.ok {
				assert.Empty(t, errs)
				assert.NoError(t, n.ValidateErr(tol))
			} else {
				assert.NotEmpty(t, errs)
				assert.True(t, errors.Is(n.ValidateErr(tol), wire.ErrGeometry))
			}
		})
	}
}

func TestValidate_Structure(t *testing.T) {
	n := wire.New([]v3.Vec{{}, {X: 1, Y: 1, Z: 1}}, nil)
	require.NoError(t, n.ComputeConnectivity())
	assert.NotEmpty(t, n.Validate(tol))
	assert.True(t, errors.Is(n.ValidateErr(tol), wire.ErrTopology))

	unconnected := wiretest.Cube()
	assert.True(t, errors.Is(unconnected.ValidateErr(tol), wire.ErrTopology))
}

func TestValidate_ZeroLengthEdge(t *testing.T) {
	n := fitted(t, wiretest.Doubled())
	errs := n.Validate(tol)
	require.Len(t, errs, 1)
	assert.Equal(t, []int{1}, errs[0].Edges)
	assert.Contains(t, errs[0].Error(), "length 0")
}

func TestValidate_SharedEndOverlap(t *testing.T) {
	n := fitted(t, wiretest.Overlapping())
	errs := n.Validate(tol)
	require.NotEmpty(t, errs)
	assert.Equal(t, []int{0, 1}, errs[0].Edges)
	assert.Contains(t, errs[0].Error(), "overlap")

	// The same two wires leaving in opposite directions are fine.
	opposite := wire.New([]v3.Vec{
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.2, Y: 0.5, Z: 0.5}, {X: 0.9, Y: 0.5, Z: 0.5},
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}, [][2]int{{0, 1}, {0, 2}})
	assert.Empty(t, fitted(t, opposite).Validate(tol))

	// A small angle between them is fine too.
	bent := wire.New([]v3.Vec{
		{X: 0, Y: 0.5, Z: 0.5}, {X: 0.3, Y: 0.5, Z: 0.5}, {X: 0.6, Y: 0.55, Z: 0.5},
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}, [][2]int{{0, 1}, {0, 2}})
	assert.Empty(t, fitted(t, bent).Validate(tol))
}

func TestSegmentDistance(t *testing.T) {
	cases := []struct {
		name           string
		p0, p1, q0, q1 v3.Vec
		want           float64
	}{
		{"Crossing", v3.Vec{X: -1}, v3.Vec{X: 1}, v3.Vec{Y: -1, Z: 2}, v3.Vec{Y: 1, Z: 2}, 2},
		{"Parallel", v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1}, v3.Vec{X: 1, Y: 1}, 1},
		{"EndToEnd", v3.Vec{}, v3.Vec{X: 1}, v3.Vec{X: 3}, v3.Vec{X: 4}, 2},
		{"Degenerate", v3.Vec{}, v3.Vec{}, v3.Vec{Z: 3}, v3.Vec{Z: 3}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, wire.SegmentDistance(tc.p0, tc.p1, tc.q0, tc.q1), 1e-12)
		})
	}
}
