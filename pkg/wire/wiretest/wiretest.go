// Package wiretest builds small reference lattices for tests.
package wiretest

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/wire"
)

// Cube returns the 8 corners and 12 edges of the unit cube wire frame.
func Cube() *wire.Network {
	var vs []v3.Vec
	for i := 0; i < 8; i++ {
		vs = append(vs, v3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)})
	}
	var es [][2]int
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				es = append(es, [2]int{i, i | bit})
			}
		}
	}
	return wire.New(vs, es)
}

// Brick returns an n×n×n grid of vertices over [0,1]^3 joined along the
// three axes, the wire frame of (n-1)^3 stacked bricks.
func Brick(n int) *wire.Network {
	idx := func(i, j, k int) int { return i + n*(j+n*k) }
	step := 1 / float64(n-1)
	var vs []v3.Vec
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				vs = append(vs, v3.Vec{X: float64(i) * step, Y: float64(j) * step, Z: float64(k) * step})
			}
		}
	}
	var es [][2]int
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				if i+1 < n {
					es = append(es, [2]int{idx(i, j, k), idx(i+1, j, k)})
				}
				if j+1 < n {
					es = append(es, [2]int{idx(i, j, k), idx(i, j+1, k)})
				}
				if k+1 < n {
					es = append(es, [2]int{idx(i, j, k), idx(i, j, k+1)})
				}
			}
		}
	}
	return wire.New(vs, es)
}

// Cross returns a centre vertex joined to the six face centres of the unit
// cube: a simple cubic lattice with no edge on the cell boundary.
func Cross() *wire.Network {
	vs := []v3.Vec{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 0, Y: 0.5, Z: 0.5}, {X: 1, Y: 0.5, Z: 0.5},
		{X: 0.5, Y: 0, Z: 0.5}, {X: 0.5, Y: 1, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0}, {X: 0.5, Y: 0.5, Z: 1},
	}
	es := [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}}
	return wire.New(vs, es)
}

// Star returns the body-centred star: the cube centre joined to all eight
// corners.
func Star() *wire.Network {
	vs := []v3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}}
	var es [][2]int
	for i := 0; i < 8; i++ {
		vs = append(vs, v3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)})
		es = append(es, [2]int{0, i + 1})
	}
	return wire.New(vs, es)
}

// Diamond returns the conventional cubic cell of the diamond lattice: the
// four tetrahedral sites bonded to their face-centred cubic neighbours.
func Diamond() *wire.Network {
	var vs []v3.Vec
	index := map[v3.Vec]int{}
	add := func(p v3.Vec) int {
		if i, ok := index[p]; ok {
			return i
		}
		vs = append(vs, p)
		index[p] = len(vs) - 1
		return len(vs) - 1
	}
	sites := []v3.Vec{
		{X: 0.25, Y: 0.25, Z: 0.25},
		{X: 0.25, Y: 0.75, Z: 0.75},
		{X: 0.75, Y: 0.25, Z: 0.75},
		{X: 0.75, Y: 0.75, Z: 0.25},
	}
	var es [][2]int
	// Every tetrahedral site has the same four bond directions.
	dirs := []v3.Vec{
		{X: -1, Y: -1, Z: -1},
		{X: 1, Y: 1, Z: -1},
		{X: 1, Y: -1, Z: 1},
		{X: -1, Y: 1, Z: 1},
	}
	for _, s := range sites {
		a := add(s)
		for _, d := range dirs {
			p := s.Add(d.MulScalar(0.25))
			es = append(es, [2]int{a, add(p)})
		}
	}
	return wire.New(vs, es)
}

// Crossed returns two face diagonals of the z=0.5 plane that cross at the
// cube centre without sharing a vertex: an invalid network.
func Crossed() *wire.Network {
	vs := []v3.Vec{
		{X: 0, Y: 0, Z: 0.5}, {X: 1, Y: 1, Z: 0.5},
		{X: 1, Y: 0, Z: 0.5}, {X: 0, Y: 1, Z: 0.5},
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}
	return wire.New(vs, [][2]int{{0, 1}, {2, 3}})
}

// Doubled returns a wire along the x axis through the cube centre whose
// middle edge joins two distinct vertices at the same position: an invalid
// network. Two free corners span the cube.
func Doubled() *wire.Network {
	vs := []v3.Vec{
		{X: 0, Y: 0.5, Z: 0.5}, {X: 0.5, Y: 0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: 1, Y: 0.5, Z: 0.5},
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}
	return wire.New(vs, [][2]int{{0, 1}, {1, 2}, {2, 3}})
}

// Overlapping returns two wires leaving the same vertex in the same
// direction, the shorter one lying along the longer: an invalid network.
func Overlapping() *wire.Network {
	vs := []v3.Vec{
		{X: 0, Y: 0.5, Z: 0.5}, {X: 0.3, Y: 0.5, Z: 0.5}, {X: 0.6, Y: 0.5, Z: 0.5},
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}
	return wire.New(vs, [][2]int{{0, 1}, {0, 2}})
}

// Fit computes connectivity and fits n into the cube [-half, half]^3.
func Fit(n *wire.Network, half float64) (*wire.Network, error) {
	if err := n.ComputeConnectivity(); err != nil {
		return nil, err
	}
	h := v3.Vec{X: half, Y: half, Z: half}
	if err := n.ScaleFit(h.MulScalar(-1), h); err != nil {
		return nil, err
	}
	return n, nil
}
