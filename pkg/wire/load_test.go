package wire_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/wirelattice/pkg/wire"
)

func TestLoadFile(t *testing.T) {
	cases := []struct {
		file     string
		vertices int
		edges    int
	}{
		{"testdata/cube.wire", 8, 12},
		{"testdata/diamond.wire", 14, 16},
		{"testdata/invalid.wire", 3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			n, err := wire.LoadFile(tc.file)
			require.NoError(t, err)
			assert.Equal(t, tc.vertices, n.NumVertices())
			assert.Equal(t, tc.edges, n.NumEdges())
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	cases := map[string]string{
		"ShortVertex":  "v 1 2\n",
		"BadFloat":     "v 1 2 x\n",
		"ShortEdge":    "v 0 0 0\nl 1\n",
		"BadIndex":     "l 1 b\n",
		"UnknownEntry": "f 1 2 3\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wire.Load(strings.NewReader(src))
			assert.True(t, errors.Is(err, wire.ErrParse), "error = %v", err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := wire.LoadFile("testdata/nope.wire")
	assert.Error(t, err)
}
