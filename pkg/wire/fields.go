package wire

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ThicknessType selects how a thickness field is interpreted.
type ThicknessType int

const (
	PerEdge   ThicknessType = iota // one radius per edge, uniform along it
	PerVertex                      // one radius per vertex, interpolated along edges
)

func (t ThicknessType) String() string {
	switch t {
	case PerEdge:
		return "per-edge"
	case PerVertex:
		return "per-vertex"
	default:
		return fmt.Sprintf("ThicknessType(%d)", int(t))
	}
}

// ThicknessField holds tube radii, either one per edge or one per vertex.
type ThicknessField struct {
	Type   ThicknessType
	Values []float64
}

// UniformThickness returns a per-edge field with the same radius everywhere.
func UniformThickness(n *Network, radius float64) ThicknessField {
	values := make([]float64, n.NumEdges())
	for i := range values {
		values[i] = radius
	}
	return ThicknessField{Type: PerEdge, Values: values}
}

// Check verifies the field matches the network and has no negative values.
func (f ThicknessField) Check(n *Network) error {
	want := n.NumEdges()
	if f.Type == PerVertex {
		want = n.NumVertices()
	}
	if f.Type != PerEdge && f.Type != PerVertex {
		return errors.Wrapf(ErrGeometry, "thickness: unknown type %v", f.Type)
	}
	if len(f.Values) != want {
		return errors.Wrapf(ErrGeometry, "thickness: %s field has %d values, want %d", f.Type, len(f.Values), want)
	}
	for i, v := range f.Values {
		if v < 0 {
			return errors.Wrapf(ErrGeometry, "thickness: value %d is negative (%g)", i, v)
		}
	}
	return nil
}

// Radii returns the tube radius at the first and second endpoint of edge e.
func (f ThicknessField) Radii(n *Network, e int) (r0, r1 float64) {
	if f.Type == PerVertex {
		ends := n.Edge(e)
		return f.Values[ends[0]], f.Values[ends[1]]
	}
	return f.Values[e], f.Values[e]
}

// OffsetField holds one displacement per vertex.
type OffsetField []v3.Vec

// ZeroOffset returns an all-zero offset field for n.
func ZeroOffset(n *Network) OffsetField {
	return make(OffsetField, n.NumVertices())
}
