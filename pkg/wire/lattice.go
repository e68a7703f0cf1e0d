package wire

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Arm is one distinct incident direction at a lattice node. Periodic copies
// of the same edge collapse into a single arm.
type Arm struct {
	Edge   int    // network edge the arm was taken from
	Vertex int    // network vertex at the node end of Edge
	Shift  v3.Vec // translation taking Vertex onto the node position
	Vector v3.Vec // edge vector pointing away from the node
}

// Direction returns the unit direction of the arm.
func (a Arm) Direction() v3.Vec {
	return a.Vector.Normalize()
}

// Length returns the edge length of the arm.
func (a Arm) Length() float64 {
	return a.Vector.Length()
}

// LatticeNode is a class of network vertices that coincide modulo the
// cell period, together with every distinct edge leaving the class.
type LatticeNode struct {
	Rep      int    // lowest vertex index in the class
	Position v3.Vec // position of Rep
	Members  []int
	Arms     []Arm
}

// Degree returns the number of distinct arms at the node.
func (n *LatticeNode) Degree() int {
	return len(n.Arms)
}

// ArmRef locates one end of a network edge inside the lattice.
type ArmRef struct {
	Node int
	Arm  int
}

// Lattice is the periodic view of a network: vertices merged across cell
// walls and edges deduplicated across periodic copies.
type Lattice struct {
	Nodes []LatticeNode
	// NodeOf maps each network vertex to its lattice node.
	NodeOf []int
	// Ends maps each network edge to the arms at its two endpoints.
	Ends [][2]ArmRef
	// DuplicateOf is -1 for canonical edges, or the index of the canonical
	// edge that this edge is a periodic copy of.
	DuplicateOf []int
}

// MinimumImage reduces d to the periodic image closest to the origin.
func MinimumImage(d, period v3.Vec) v3.Vec {
	for axis := 0; axis < 3; axis++ {
		l := Component(period, axis)
		if l <= 0 {
			continue
		}
		c := Component(d, axis)
		d = WithComponent(d, axis, c-math.Round(c/l)*l)
	}
	return d
}

// Lattice groups vertices that coincide modulo the cell period (within tol)
// and lists the distinct arms of each group. Connectivity must have been
// computed.
func (n *Network) Lattice(tol float64) (*Lattice, error) {
	if n.adjacency == nil {
		return nil, errors.Wrap(ErrTopology, "lattice: connectivity has not been computed")
	}
	period := n.Period()

	lat := &Lattice{
		NodeOf:      make([]int, len(n.vertices)),
		Ends:        make([][2]ArmRef, len(n.edges)),
		DuplicateOf: make([]int, len(n.edges)),
	}
	for v, p := range n.vertices {
		node := -1
		for i := range lat.Nodes {
			if MinimumImage(p.Sub(lat.Nodes[i].Position), period).Length() <= tol {
				node = i
				break
			}
		}
		if node < 0 {
			lat.Nodes = append(lat.Nodes, LatticeNode{Rep: v, Position: p})
			node = len(lat.Nodes) - 1
		}
		lat.Nodes[node].Members = append(lat.Nodes[node].Members, v)
		lat.NodeOf[v] = node
	}

	parent := make([]int, len(n.edges))
	for e := range parent {
		parent[e] = e
	}
	find := func(e int) int {
		for parent[e] != e {
			parent[e] = parent[parent[e]]
			e = parent[e]
		}
		return e
	}
	for ni := range lat.Nodes {
		node := &lat.Nodes[ni]
		for _, v := range node.Members {
			shift := node.Position.Sub(n.vertices[v])
			for _, e := range n.adjacency[v] {
				ends := n.edges[e]
				end, other := 0, ends[1]
				if ends[1] == v {
					end, other = 1, ends[0]
				}
				vec := n.vertices[other].Sub(n.vertices[v])

				arm := -1
				for ai, a := range node.Arms {
					if a.Vector.Sub(vec).Length() <= tol {
						arm = ai
						break
					}
				}
				if arm < 0 {
					node.Arms = append(node.Arms, Arm{Edge: e, Vertex: v, Shift: shift, Vector: vec})
					arm = len(node.Arms) - 1
				} else if a, b := find(node.Arms[arm].Edge), find(e); a != b {
					if a < b {
						parent[b] = a
					} else {
						parent[a] = b
					}
				}
				lat.Ends[e][end] = ArmRef{Node: ni, Arm: arm}
			}
		}
	}

	for e := range lat.DuplicateOf {
		lat.DuplicateOf[e] = -1
		if root := find(e); root != e {
			lat.DuplicateOf[e] = root
		}
	}
	return lat, nil
}

// Canonical reports whether edge e is not a periodic copy of an earlier edge.
func (l *Lattice) Canonical(e int) bool {
	return l.DuplicateOf[e] < 0
}
