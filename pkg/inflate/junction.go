package inflate

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/plan-systems/klog"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/profile"
	"github.com/chazu/wirelattice/pkg/wire"
)

// Ring offsets are clamped to this fraction of the arm length so the two
// rings of an edge never cross.
const maxOffsetFraction = 0.45

// parallelSine is the sine below which two arms count as parallel.
const parallelSine = 1e-3

type junctionKind int

const (
	junctionSkipped junctionKind = iota
	junctionCap
	junctionSleeve
	junctionHull
	junctionSlab
)

func (k junctionKind) String() string {
	switch k {
	case junctionCap:
		return "cap"
	case junctionSleeve:
		return "sleeve"
	case junctionHull:
		return "hull"
	case junctionSlab:
		return "slab"
	default:
		return "skipped"
	}
}

// arm is the geometry of one lattice arm as seen from its node.
type arm struct {
	canon  int  // canonical edge the arm belongs to
	start  bool // node is at the first vertex of canon
	dir    v3.Vec
	length float64
	radius float64
	offset float64 // distance from the node to the arm's ring
	frame  frame
}

// layout is the per-node arm geometry shared by tubes and junctions.
type layout struct {
	net  *wire.Network
	lat  *wire.Lattice
	prof *profile.Profile
	arms [][]arm
	// degenerate counts arms whose offset was clamped because another arm
	// was nearly parallel.
	degenerate int
}

func canonicalOf(lat *wire.Lattice, e int) int {
	if d := lat.DuplicateOf[e]; d >= 0 {
		return d
	}
	return e
}

func newLayout(net *wire.Network, lat *wire.Lattice, field wire.ThicknessField, prof *profile.Profile) *layout {
	l := &layout{net: net, lat: lat, prof: prof, arms: make([][]arm, len(lat.Nodes))}
	circ := prof.CircumRadius()
	for ni := range lat.Nodes {
		node := &lat.Nodes[ni]
		arms := make([]arm, len(node.Arms))
		for ai, a := range node.Arms {
			c := canonicalOf(lat, a.Edge)
			ends := net.Edge(c)
			vec := net.Vertex(ends[1]).Sub(net.Vertex(ends[0]))
			r0, r1 := field.Radii(net, c)
			start := a.Vector.Dot(vec) > 0
			r := r1
			if start {
				r = r0
			}
			arms[ai] = arm{
				canon:  c,
				start:  start,
				dir:    a.Direction(),
				length: a.Length(),
				radius: r * circ,
				frame:  frameFor(vec),
			}
		}
		for ai := range arms {
			a := &arms[ai]
			cot := 0.0
			for bi, b := range arms {
				if bi == ai || b.radius <= 0 {
					continue
				}
				cos := a.dir.Dot(b.dir)
				sin := a.dir.Cross(b.dir).Length()
				if sin < parallelSine {
					if cos > 0 {
						cot = math.Inf(1)
						l.degenerate++
					}
					continue
				}
				cot = math.Max(cot, (1+cos)/sin)
			}
			lo, hi := a.radius/2, maxOffsetFraction*a.length
			a.offset = math.Min(math.Max(a.radius*cot, lo), hi)
		}
		l.arms[ni] = arms
	}
	return l
}

// tubes returns one tube per canonical edge with a positive radius.
func (l *layout) tubes(field wire.ThicknessField) []kernel.Tagged {
	var out []kernel.Tagged
	for e := 0; e < l.net.NumEdges(); e++ {
		if !l.lat.Canonical(e) {
			continue
		}
		r0, r1 := field.Radii(l.net, e)
		if r0 <= 0 && r1 <= 0 {
			continue
		}
		ends := l.net.Edge(e)
		refs := l.lat.Ends[e]
		a := l.arms[refs[0].Node][refs[0].Arm]
		b := l.arms[refs[1].Node][refs[1].Arm]
		p0, p1 := l.net.Vertex(ends[0]), l.net.Vertex(ends[1])
		length := p1.Sub(p0).Length()
		t0, t1 := a.offset, length-b.offset
		if t1 < t0 {
			t1 = t0
		}
		out = append(out, newTube(e, p0, p1, r0, r1, t0, t1, l.prof))
	}
	return out
}

// junctions returns one convex piece per lattice node, built from the two
// rings of every arm: one at the arm offset and one through the node.
func (l *layout) junctions(eps float64) ([]kernel.Tagged, map[junctionKind]int) {
	var out []kernel.Tagged
	kinds := make(map[junctionKind]int)
	for ni := range l.lat.Nodes {
		node := &l.lat.Nodes[ni]
		var pts []v3.Vec
		var live []arm
		maxR := 0.0
		for _, a := range l.arms[ni] {
			if a.radius <= 0 {
				continue
			}
			live = append(live, a)
			maxR = math.Max(maxR, a.radius)
			r := a.radius / l.prof.CircumRadius()
			pts = append(pts, a.frame.ring(l.prof, node.Position.Add(a.dir.MulScalar(a.offset)), r)...)
			pts = append(pts, a.frame.ring(l.prof, node.Position, r)...)
		}
		kind := junctionHull
		switch {
		case len(live) == 0:
			kinds[junctionSkipped]++
			continue
		case len(live) == 1:
			kind = junctionCap
		case len(live) == 2 && live[0].dir.Dot(live[1].dir) < -1+parallelSine:
			kind = junctionSleeve
		}
		planes, err := convexHull(pts, eps)
		pad := 0.0
		switch err {
		case nil:
		case errCoplanar:
			kind, pad = junctionSlab, maxR
			planes, err = slabPlanes(pts, maxR, eps)
		}
		if err != nil {
			klog.Warningf("inflate: junction at vertex %d skipped: %v", node.Rep, err)
			kinds[junctionSkipped]++
			continue
		}
		kinds[kind]++
		out = append(out, newHullPiece(node.Rep, planes, pts, pad))
	}
	return out, kinds
}
