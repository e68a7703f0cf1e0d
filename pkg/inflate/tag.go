package inflate

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/wire"
)

// tagger names the network element behind an image of a piece. Pieces are
// built once per canonical edge and lattice node; an image of a piece moved
// by a whole number of periods is the piece of a periodic copy when the
// network has that copy, and the copy is what the face source names.
type tagger struct {
	net    *wire.Network
	lat    *wire.Lattice
	tol    float64
	pieces []kernel.Tagged
	copies map[int][]int // canonical edge to every edge in its class
	memo   map[tagKey]int
}

type tagKey struct {
	piece int
	off   v3.Vec
}

func newTagger(net *wire.Network, lat *wire.Lattice, pieces []kernel.Tagged, tol float64) *tagger {
	t := &tagger{
		net:    net,
		lat:    lat,
		tol:    tol,
		pieces: pieces,
		copies: make(map[int][]int),
		memo:   make(map[tagKey]int),
	}
	for e := 0; e < net.NumEdges(); e++ {
		c := canonicalOf(lat, e)
		t.copies[c] = append(t.copies[c], e)
	}
	return t
}

// source returns the tag for piece moved by off. When no network element
// sits at the moved position the piece's own tag is kept.
func (t *tagger) source(piece int, off v3.Vec) int {
	key := tagKey{piece, off}
	if s, ok := t.memo[key]; ok {
		return s
	}
	s := t.resolve(t.pieces[piece].Source(), off)
	t.memo[key] = s
	return s
}

func (t *tagger) resolve(tag int, off v3.Vec) int {
	idx, isVertex := kernel.DecodeSource(tag)
	if isVertex {
		want := t.net.Vertex(idx).Add(off)
		for _, v := range t.lat.Nodes[t.lat.NodeOf[idx]].Members {
			if t.near(t.net.Vertex(v), want) {
				return kernel.VertexSource(v)
			}
		}
		return tag
	}
	ends := t.net.Edge(idx)
	a, b := t.net.Vertex(ends[0]).Add(off), t.net.Vertex(ends[1]).Add(off)
	for _, e := range t.copies[idx] {
		q := t.net.Edge(e)
		p0, p1 := t.net.Vertex(q[0]), t.net.Vertex(q[1])
		if (t.near(p0, a) && t.near(p1, b)) || (t.near(p0, b) && t.near(p1, a)) {
			return kernel.EdgeSource(e)
		}
	}
	return tag
}

func (t *tagger) near(p, q v3.Vec) bool {
	return p.Sub(q).Length() <= t.tol
}
