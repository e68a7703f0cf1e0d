package params_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/wirelattice/pkg/params"
	"github.com/chazu/wirelattice/pkg/wire"
	"github.com/chazu/wirelattice/pkg/wire/wiretest"
)

func TestCreateFromSettingFile_Cube(t *testing.T) {
	net := wiretest.Cube()
	m, err := params.CreateFromSettingFile(net, 0.1, "testdata/cube_orbits.yaml", "testdata/cube_modifier.yaml")
	require.NoError(t, err)
	assert.Equal(t, wire.PerEdge, m.ThicknessType())
	assert.Len(t, m.EdgeOrbits(), 3)
	assert.Len(t, m.VertexOrbits(), 2)

	field, err := m.EvaluateThickness(nil)
	require.NoError(t, err)
	require.Equal(t, wire.PerEdge, field.Type)
	require.Len(t, field.Values, net.NumEdges())
	for _, e := range []int{0, 5, 8, 11, 2, 4, 6, 7} {
		assert.InDelta(t, 0.2, field.Values[e], 1e-12, "edge %d", e)
	}
	for _, e := range []int{1, 3, 9, 10} {
		assert.InDelta(t, 0.1+0.01*float64(e), field.Values[e], 1e-12, "edge %d", e)
	}

	off, err := m.EvaluateOffset(nil)
	require.NoError(t, err)
	require.Len(t, off, net.NumVertices())
	for _, v := range []int{0, 3, 5, 6} {
		assert.Equal(t, v3.Vec{}, off[v])
	}
	for _, v := range []int{1, 2, 4, 7} {
		assert.InDelta(t, 0.1, off[v].X, 1e-12)
		assert.InDelta(t, -0.05, off[v].Z, 1e-12)
	}
}

func TestCreateFromSettingFile_Legacy(t *testing.T) {
	net := wiretest.Cube()
	// Stretch the cell so offsets are visibly scaled by the period.
	require.NoError(t, net.ScaleFit(v3.Vec{}, v3.Vec{X: 2, Y: 4, Z: 2}))
	m, err := params.CreateFromSettingFile(net, 0.1, "testdata/cube_orbits.yaml", "testdata/legacy_modifier.json")
	require.NoError(t, err)
	assert.Equal(t, wire.PerVertex, m.ThicknessType())

	field, err := m.EvaluateThickness(nil)
	require.NoError(t, err)
	require.Len(t, field.Values, net.NumVertices())
	for _, v := range []int{0, 3, 5, 6} {
		assert.InDelta(t, 0.3, field.Values[v], 1e-12)
	}
	for _, v := range []int{1, 2, 4, 7} {
		assert.InDelta(t, 0.2, field.Values[v], 1e-12)
	}

	off, err := m.EvaluateOffset(nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, off[0].Y, 1e-12)
	assert.Equal(t, v3.Vec{}, off[1])
}

func TestCreateFromSettingFile_Missing(t *testing.T) {
	_, err := params.CreateFromSettingFile(wiretest.Cube(), 0.1, "testdata/nope.yaml", "")
	assert.ErrorIs(t, err, params.ErrParse)
}

// A brick lattice with every edge in one orbit and a constant add rule must
// come out uniform.
func TestBrickUniformOffset(t *testing.T) {
	net := wiretest.Brick(5)
	ids := make([]string, net.NumEdges())
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	orbits := "edge_orbits:\n  - [" + strings.Join(ids, ", ") + "]\n"
	mods := "thickness:\n  type: edge_orbit\n  rules:\n    - orbits: [0]\n      op: add\n      value: 0.05\n"

	m, err := params.CreateFromSettings(net, 0.3, []byte(orbits), []byte(mods))
	require.NoError(t, err)
	field, err := m.EvaluateThickness(nil)
	require.NoError(t, err)
	require.Len(t, field.Values, net.NumEdges())
	for i, v := range field.Values {
		assert.InDelta(t, 0.35, v, 1e-12, "edge %d", i)
	}
}

func TestNoModifiers(t *testing.T) {
	net := wiretest.Cube()
	m, err := params.CreateFromSettings(net, 0.25, []byte("edge_orbits: [[0, 1]]"), nil)
	require.NoError(t, err)
	field, err := m.EvaluateThickness(nil)
	require.NoError(t, err)
	assert.Equal(t, wire.UniformThickness(net, 0.25), field)
	off, err := m.EvaluateOffset(nil)
	require.NoError(t, err)
	assert.Equal(t, wire.ZeroOffset(net), off)
}

func TestVariables(t *testing.T) {
	net := wiretest.Cube()
	mods := `
thickness:
  rules:
    - orbits: [0]
      value: "base * scale"
    - orbits: [1]
      value: "(* scale orbit)"
`
	m, err := params.CreateFromSettings(net, 0.1, []byte("edge_orbits: [[0], [1]]"), []byte(mods))
	require.NoError(t, err)

	field, err := m.EvaluateThickness(map[string]float64{"scale": 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, field.Values[0], 1e-12)
	assert.InDelta(t, 3.0, field.Values[1], 1e-12)
	assert.InDelta(t, 0.1, field.Values[2], 1e-12)

	// Evaluation is pure: a second call with other inputs does not leak.
	again, err := m.EvaluateThickness(map[string]float64{"scale": 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, again.Values[0], 1e-12)
	assert.InDelta(t, 1.0, again.Values[1], 1e-12)

	_, err = m.EvaluateThickness(nil)
	assert.ErrorIs(t, err, params.ErrValidation, "unknown variable")
	_, err = m.EvaluateThickness(map[string]float64{"scale": 1, "base": 2})
	assert.ErrorIs(t, err, params.ErrValidation, "reserved name")
	_, err = m.EvaluateThickness(map[string]float64{"scale": 1, "2x": 2})
	assert.ErrorIs(t, err, params.ErrValidation, "bad name")
}

func TestNegativeResult(t *testing.T) {
	mods := "thickness:\n  rules:\n    - orbits: [0]\n      op: add\n      value: -1\n"
	m, err := params.CreateFromSettings(wiretest.Cube(), 0.1, []byte("edge_orbits: [[0]]"), []byte(mods))
	require.NoError(t, err)
	_, err = m.EvaluateThickness(nil)
	assert.ErrorIs(t, err, params.ErrValidation)
}

func TestCreateFromSettings_Errors(t *testing.T) {
	cases := []struct {
		name   string
		orbits string
		mods   string
		want   error
	}{
		{"BadYAML", "edge_orbits: [[0", "", params.ErrParse},
		{"UnknownKey", "edge_orbitz: [[0]]", "", params.ErrParse},
		{"EdgeOutOfRange", "edge_orbits: [[12]]", "", params.ErrValidation},
		{"VertexNegative", "vertex_orbits: [[-1]]", "", params.ErrValidation},
		{"EmptyOrbit", "edge_orbits: [[]]", "", params.ErrValidation},
		{"SharedMember", "edge_orbits: [[0, 1], [1]]", "", params.ErrValidation},
		{"RuleOrbitOutOfRange", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - orbits: [1]\n      value: 1\n", params.ErrValidation},
		{"RuleWithoutOrbits", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - value: 1\n", params.ErrValidation},
		{"BadOp", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - orbits: [0]\n      op: pow\n      value: 1\n", params.ErrValidation},
		{"BadType", "edge_orbits: [[0]]",
			"thickness:\n  type: face_orbit\n", params.ErrValidation},
		{"BadFormula", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - orbits: [0]\n      value: \"1 +\"\n", params.ErrParse},
		{"BadLisp", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - orbits: [0]\n      value: \"(+ 1\"\n", params.ErrParse},
		{"ListValue", "edge_orbits: [[0]]",
			"thickness:\n  rules:\n    - orbits: [0]\n      value: [1]\n", params.ErrParse},
		{"LegacyMismatch", "edge_orbits: [[0]]",
			"thickness:\n  effective_orbits: [0]\n  thickness_values: []\n", params.ErrValidation},
		{"OffsetArity", "vertex_orbits: [[0]]",
			"vertex_offset:\n  rules:\n    - orbits: [0]\n      value: [0, 1]\n", params.ErrValidation},
		{"OffsetType", "vertex_orbits: [[0]]",
			"vertex_offset:\n  type: edge_orbit\n", params.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := params.CreateFromSettings(wiretest.Cube(), 0.1, []byte(tc.orbits), []byte(tc.mods))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateFromSettings_BadBase(t *testing.T) {
	_, err := params.CreateFromSettings(wiretest.Cube(), -1, nil, nil)
	assert.ErrorIs(t, err, params.ErrValidation)
}

func TestConcurrentEvaluation(t *testing.T) {
	net := wiretest.Cube()
	m, err := params.CreateFromSettingFile(net, 0.1, "testdata/cube_orbits.yaml", "testdata/cube_modifier.yaml")
	require.NoError(t, err)
	want, err := m.EvaluateThickness(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	got := make([]wire.ThicknessField, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = m.EvaluateThickness(nil)
		}(i)
	}
	wg.Wait()
	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want, got[i])
	}
}
