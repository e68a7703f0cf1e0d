package wire

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Network is a periodic wire network. Vertex indices are stable and are
// referenced by edges, thickness fields and face sources.
type Network struct {
	vertices []v3.Vec
	edges    [][2]int
	cell     sdf.Box3

	// adjacency is nil until ComputeConnectivity succeeds.
	adjacency [][]int
}

// New creates a network from vertices and edges. Both slices are copied.
// The periodic cell defaults to the bounding box of the vertices.
func New(vertices []v3.Vec, edges [][2]int) *Network {
	n := &Network{
		vertices: append([]v3.Vec(nil), vertices...),
		edges:    append([][2]int(nil), edges...),
	}
	n.cell = n.BoundingBox()
	return n
}

// NumVertices returns the number of vertices.
func (n *Network) NumVertices() int {
	return len(n.vertices)
}

// NumEdges returns the number of edges.
func (n *Network) NumEdges() int {
	return len(n.edges)
}

// Vertices returns a copy of the vertex positions.
func (n *Network) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), n.vertices...)
}

// Vertex returns the position of vertex i.
func (n *Network) Vertex(i int) v3.Vec {
	return n.vertices[i]
}

// Edges returns a copy of the edge index pairs.
func (n *Network) Edges() [][2]int {
	return append([][2]int(nil), n.edges...)
}

// Edge returns the endpoints of edge i.
func (n *Network) Edge(i int) [2]int {
	return n.edges[i]
}

// Cell returns the periodic cell.
func (n *Network) Cell() sdf.Box3 {
	return n.cell
}

// SetCell replaces the periodic cell without moving any vertex.
func (n *Network) SetCell(cell sdf.Box3) {
	n.cell = cell
}

// Period returns the edge lengths of the periodic cell.
func (n *Network) Period() v3.Vec {
	return n.cell.Max.Sub(n.cell.Min)
}

// HasConnectivity reports whether ComputeConnectivity has succeeded.
func (n *Network) HasConnectivity() bool {
	return n.adjacency != nil
}

// Incident returns the edges incident to vertex v. It returns nil before
// connectivity has been computed.
func (n *Network) Incident(v int) []int {
	if n.adjacency == nil {
		return nil
	}
	return append([]int(nil), n.adjacency[v]...)
}

// Degree returns the number of edges incident to vertex v.
func (n *Network) Degree(v int) int {
	if n.adjacency == nil {
		return 0
	}
	return len(n.adjacency[v])
}

// ComputeConnectivity builds the vertex to edge adjacency. It fails with
// ErrTopology if an edge references an out-of-range vertex, joins a vertex
// to itself, or repeats another edge.
func (n *Network) ComputeConnectivity() error {
	adjacency := make([][]int, len(n.vertices))
	seen := make(map[[2]int]int, len(n.edges))

	for i, e := range n.edges {
		for _, v := range e {
			if v < 0 || v >= len(n.vertices) {
				return errors.Wrapf(ErrTopology, "edge %d references vertex %d, have %d vertices", i, v, len(n.vertices))
			}
		}
		if e[0] == e[1] {
			return errors.Wrapf(ErrTopology, "edge %d is zero-length (both endpoints are vertex %d)", i, e[0])
		}
		key := e
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if first, dup := seen[key]; dup {
			return errors.Wrapf(ErrTopology, "edge %d duplicates edge %d", i, first)
		}
		seen[key] = i

		adjacency[e[0]] = append(adjacency[e[0]], i)
		adjacency[e[1]] = append(adjacency[e[1]], i)
	}

	n.adjacency = adjacency
	return nil
}

// BoundingBox returns the axis-aligned bounding box of the vertices.
func (n *Network) BoundingBox() sdf.Box3 {
	if len(n.vertices) == 0 {
		return sdf.Box3{}
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range n.vertices {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// ScaleFit scales and translates every vertex, independently per axis, so
// the vertex bounding box becomes [min, max]. The periodic cell is set to
// the same box. Edge topology is untouched.
func (n *Network) ScaleFit(min, max v3.Vec) error {
	if len(n.vertices) == 0 {
		return errors.Wrap(ErrGeometry, "scale fit: network has no vertices")
	}
	bb := n.BoundingBox()
	src := bb.Max.Sub(bb.Min)
	dst := max.Sub(min)
	for axis := 0; axis < 3; axis++ {
		if Component(src, axis) <= 0 {
			return errors.Wrapf(ErrGeometry, "scale fit: bounding box has zero extent along axis %d", axis)
		}
		if Component(dst, axis) <= 0 {
			return errors.Wrapf(ErrGeometry, "scale fit: target box has non-positive extent along axis %d", axis)
		}
	}

	scale := v3.Vec{X: dst.X / src.X, Y: dst.Y / src.Y, Z: dst.Z / src.Z}
	for i, p := range n.vertices {
		d := p.Sub(bb.Min)
		n.vertices[i] = v3.Vec{
			X: min.X + d.X*scale.X,
			Y: min.Y + d.Y*scale.Y,
			Z: min.Z + d.Z*scale.Z,
		}
	}
	n.cell = sdf.Box3{Min: min, Max: max}
	return nil
}

// SetVertices replaces the vertex positions. The vertex count must not
// change; topology and the periodic cell are kept.
func (n *Network) SetVertices(vertices []v3.Vec) error {
	if len(vertices) != len(n.vertices) {
		return errors.Wrapf(ErrTopology, "set vertices: got %d positions, network has %d vertices", len(vertices), len(n.vertices))
	}
	copy(n.vertices, vertices)
	return nil
}

// ApplyOffset displaces every vertex by its entry in the offset field.
func (n *Network) ApplyOffset(offset OffsetField) error {
	if len(offset) != len(n.vertices) {
		return errors.Wrapf(ErrTopology, "apply offset: got %d offsets, network has %d vertices", len(offset), len(n.vertices))
	}
	for i := range n.vertices {
		n.vertices[i] = n.vertices[i].Add(offset[i])
	}
	return nil
}

// Clone returns a deep copy of the network, including connectivity.
func (n *Network) Clone() *Network {
	c := &Network{
		vertices: n.Vertices(),
		edges:    n.Edges(),
		cell:     n.cell,
	}
	if n.adjacency != nil {
		c.adjacency = make([][]int, len(n.adjacency))
		for i, a := range n.adjacency {
			c.adjacency[i] = append([]int(nil), a...)
		}
	}
	return c
}

// Component returns coordinate axis (0=X, 1=Y, 2=Z) of p.
func Component(p v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// WithComponent returns p with coordinate axis replaced by value.
func WithComponent(p v3.Vec, axis int, value float64) v3.Vec {
	switch axis {
	case 0:
		p.X = value
	case 1:
		p.Y = value
	default:
		p.Z = value
	}
	return p
}
