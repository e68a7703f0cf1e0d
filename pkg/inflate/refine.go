package inflate

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/wire"
)

// Refinement schemes.
const (
	SchemeLoop   = "loop"
	SchemeSimple = "simple"
)

type meshEdge struct {
	a, b     int
	faces    []int
	opposite []int
}

// crease reports whether the edge separates faces of different wall class.
// These edges keep the cell walls flat and their outlines fixed.
func (e *meshEdge) crease(class []int8) bool {
	return len(e.faces) != 2 || class[e.faces[0]] != class[e.faces[1]]
}

// subdivide splits every face into four. With smooth set it applies Loop's
// rules, treating wall outlines as creases. Children keep their parent's
// source and wall class.
func (s *surface) subdivide(smooth bool, cell sdf.Box3) *surface {
	index := make(map[[2]int]int)
	var edges []meshEdge
	edgeOf := func(a, b, f, opp int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		e, ok := index[key]
		if !ok {
			e = len(edges)
			index[key] = e
			edges = append(edges, meshEdge{a: key[0], b: key[1]})
		}
		edges[e].faces = append(edges[e].faces, f)
		edges[e].opposite = append(edges[e].opposite, opp)
		return e
	}
	faceEdges := make([][3]int, len(s.faces))
	for f, t := range s.faces {
		faceEdges[f] = [3]int{
			edgeOf(t[0], t[1], f, t[2]),
			edgeOf(t[1], t[2], f, t[0]),
			edgeOf(t[2], t[0], f, t[1]),
		}
	}

	nv := len(s.verts)
	neighbours := make([][]int, nv)
	creases := make([][]int, nv)
	for i := range edges {
		e := &edges[i]
		neighbours[e.a] = append(neighbours[e.a], e.b)
		neighbours[e.b] = append(neighbours[e.b], e.a)
		if e.crease(s.class) {
			creases[e.a] = append(creases[e.a], e.b)
			creases[e.b] = append(creases[e.b], e.a)
		}
	}

	out := &surface{verts: make([]v3.Vec, nv, nv+len(edges))}
	for v, p := range s.verts {
		out.verts[v] = p
		if !smooth {
			continue
		}
		switch c := creases[v]; {
		case len(c) == 2:
			out.verts[v] = p.MulScalar(0.75).Add(s.verts[c[0]].Add(s.verts[c[1]]).MulScalar(0.125))
		case len(c) > 2:
			// Corner where three or more creases meet.
		default:
			k := len(neighbours[v])
			if k < 3 {
				continue
			}
			beta := loopBeta(k)
			var sum v3.Vec
			for _, w := range neighbours[v] {
				sum = sum.Add(s.verts[w])
			}
			out.verts[v] = p.MulScalar(1 - float64(k)*beta).Add(sum.MulScalar(beta))
		}
	}

	mid := make([]int, len(edges))
	for i := range edges {
		e := &edges[i]
		a, b := s.verts[e.a], s.verts[e.b]
		p := a.Add(b).MulScalar(0.5)
		if smooth && !e.crease(s.class) {
			c, d := s.verts[e.opposite[0]], s.verts[e.opposite[1]]
			p = a.Add(b).MulScalar(0.375).Add(c.Add(d).MulScalar(0.125))
		}
		mid[i] = len(out.verts)
		out.verts = append(out.verts, p)
	}

	for f, t := range s.faces {
		ab, bc, ca := mid[faceEdges[f][0]], mid[faceEdges[f][1]], mid[faceEdges[f][2]]
		src, cls := s.sources[f], s.class[f]
		out.add([3]int{t[0], ab, ca}, src, cls)
		out.add([3]int{ab, t[1], bc}, src, cls)
		out.add([3]int{ca, bc, t[2]}, src, cls)
		out.add([3]int{ab, bc, ca}, src, cls)
	}
	out.snapToWalls(cell)
	return out
}

// loopBeta is Warren's form of Loop's vertex weight for valence k.
func loopBeta(k int) float64 {
	c := 0.375 + 0.25*math.Cos(2*math.Pi/float64(k))
	return (0.625 - c*c) / float64(k)
}

// snapToWalls puts every vertex of a wall face exactly on that wall, undoing
// rounding from the averaging rules.
func (s *surface) snapToWalls(cell sdf.Box3) {
	for f, c := range s.class {
		if c == interior {
			continue
		}
		axis, side := int(c)/2, int(c)%2
		w := wire.Component(cell.Min, axis)
		if side == 1 {
			w = wire.Component(cell.Max, axis)
		}
		for _, v := range s.faces[f] {
			s.verts[v] = wire.WithComponent(s.verts[v], axis, w)
		}
	}
}
