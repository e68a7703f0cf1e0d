package inflate

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/wire"
)

// interior marks faces that do not lie on a cell wall. Wall faces carry
// 2*axis+side, side 0 for the minimum wall.
const interior int8 = -1

// vkey identifies an output vertex: a grid node (b < 0) or a crossing on
// the grid edge between nodes a < b.
type vkey struct{ a, b int }

// surface is a triangle mesh under construction.
type surface struct {
	verts   []v3.Vec
	faces   [][3]int
	sources []int
	class   []int8
}

func (s *surface) add(f [3]int, source int, class int8) {
	s.faces = append(s.faces, f)
	s.sources = append(s.sources, source)
	s.class = append(s.class, class)
}

// node is a grid node reference with its cached sample.
type node struct {
	i, j, k int
	gid     int
	f       float64
}

type mesher struct {
	g     *grid
	tags  *tagger
	out   *surface
	index map[vkey]int
}

func newMesher(g *grid, tags *tagger) *mesher {
	return &mesher{g: g, tags: tags, out: &surface{}, index: make(map[vkey]int)}
}

func (m *mesher) node(i, j, k int) node {
	return node{i: i, j: j, k: k, gid: m.g.gid(i, j, k), f: m.g.value(i, j, k)}
}

func (m *mesher) nodeVertex(a node) int {
	key := vkey{a.gid, -1}
	if v, ok := m.index[key]; ok {
		return v
	}
	v := len(m.out.verts)
	m.out.verts = append(m.out.verts, m.g.pos(a.i, a.j, a.k))
	m.index[key] = v
	return v
}

// edgeVertex returns the crossing on the edge a-b. The endpoints are put in
// gid order first so both sides of a wall compute identical coordinates.
func (m *mesher) edgeVertex(a, b node) int {
	if a.gid > b.gid {
		a, b = b, a
	}
	key := vkey{a.gid, b.gid}
	if v, ok := m.index[key]; ok {
		return v
	}
	t := a.f / (a.f - b.f)
	pa, pb := m.g.pos(a.i, a.j, a.k), m.g.pos(b.i, b.j, b.k)
	p := pa.Add(pb.Sub(pa).MulScalar(t))
	// Coordinates shared by both endpoints are copied, not interpolated.
	for axis := 0; axis < 3; axis++ {
		if wire.Component(pa, axis) == wire.Component(pb, axis) {
			p = wire.WithComponent(p, axis, wire.Component(pa, axis))
		}
	}
	v := len(m.out.verts)
	m.out.verts = append(m.out.verts, p)
	m.index[key] = v
	return v
}

func (m *mesher) sourceOf(a node) int {
	return m.g.source(m.tags, a.i, a.j, a.k)
}

func centroid(ps ...v3.Vec) v3.Vec {
	var c v3.Vec
	for _, p := range ps {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(ps)))
}

func (m *mesher) at(a node) v3.Vec { return m.g.pos(a.i, a.j, a.k) }

// orient returns f wound so its normal has a non-negative dot with dir.
func (m *mesher) orient(f [3]int, dir v3.Vec) [3]int {
	a, b, c := m.out.verts[f[0]], m.out.verts[f[1]], m.out.verts[f[2]]
	if b.Sub(a).Cross(c.Sub(a)).Dot(dir) < 0 {
		f[1], f[2] = f[2], f[1]
	}
	return f
}

// kuhn lists the corner paths of the six tetrahedra sharing the cube
// diagonal from corner 0 to corner 7. Corner bits are x=1, y=2, z=4.
var kuhn = [6][4]int{
	{0, 1, 3, 7},
	{0, 1, 5, 7},
	{0, 2, 3, 7},
	{0, 2, 6, 7},
	{0, 4, 5, 7},
	{0, 4, 6, 7},
}

// march extracts the zero level set inside the cell.
func (m *mesher) march() {
	n := m.g.n
	var corner [8]node
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				neg := 0
				for c := 0; c < 8; c++ {
					corner[c] = m.node(i+c&1, j+c>>1&1, k+c>>2&1)
					if corner[c].f < 0 {
						neg++
					}
				}
				if neg == 0 || neg == 8 {
					continue
				}
				for _, t := range kuhn {
					m.tetra([4]node{corner[t[0]], corner[t[1]], corner[t[2]], corner[t[3]]})
				}
			}
		}
	}
}

func (m *mesher) tetra(t [4]node) {
	var in, out []node
	for _, a := range t {
		if a.f < 0 {
			in = append(in, a)
		} else {
			out = append(out, a)
		}
	}
	switch len(in) {
	case 0, 4:
		return
	case 1:
		a := in[0]
		f := [3]int{m.edgeVertex(a, out[0]), m.edgeVertex(a, out[1]), m.edgeVertex(a, out[2])}
		dir := centroid(m.at(out[0]), m.at(out[1]), m.at(out[2])).Sub(m.at(a))
		m.out.add(m.orient(f, dir), m.sourceOf(a), interior)
	case 3:
		a := out[0]
		f := [3]int{m.edgeVertex(in[0], a), m.edgeVertex(in[1], a), m.edgeVertex(in[2], a)}
		dir := m.at(a).Sub(centroid(m.at(in[0]), m.at(in[1]), m.at(in[2])))
		m.out.add(m.orient(f, dir), m.sourceOf(in[0]), interior)
	case 2:
		p, q, r, s := in[0], in[1], out[0], out[1]
		quad := [4]int{m.edgeVertex(p, r), m.edgeVertex(p, s), m.edgeVertex(q, s), m.edgeVertex(q, r)}
		dir := centroid(m.at(r), m.at(s)).Sub(centroid(m.at(p), m.at(q)))
		v := m.out.verts
		area := v[quad[2]].Sub(v[quad[0]]).Cross(v[quad[3]].Sub(v[quad[1]]))
		if area.Dot(dir) < 0 {
			quad[1], quad[3] = quad[3], quad[1]
		}
		src := m.sourceOf(p)
		m.out.add([3]int{quad[0], quad[1], quad[2]}, src, interior)
		m.out.add([3]int{quad[0], quad[2], quad[3]}, src, interior)
	}
}

// caps closes the surface on the six cell walls. Each wall square is split
// along the same diagonal as the tetrahedra so the cap edges coincide with
// the level set crossings. Opposite walls read the same samples and emit
// faces in the same order.
func (m *mesher) caps() {
	n := m.g.n
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		if u > v {
			u, v = v, u
		}
		for side := 0; side < 2; side++ {
			class := int8(2*axis + side)
			want := v3.Vec{}
			want = wire.WithComponent(want, axis, float64(2*side-1))
			at := func(iu, iv int) node {
				var idx [3]int
				idx[axis] = side * n
				idx[u], idx[v] = iu, iv
				return m.node(idx[0], idx[1], idx[2])
			}
			for iv := 0; iv < n; iv++ {
				for iu := 0; iu < n; iu++ {
					c00, c10 := at(iu, iv), at(iu+1, iv)
					c11, c01 := at(iu+1, iv+1), at(iu, iv+1)
					m.capTriangle([3]node{c00, c10, c11}, want, class)
					m.capTriangle([3]node{c00, c11, c01}, want, class)
				}
			}
		}
	}
}

// capTriangle clips a wall triangle to the inside of the solid and fans the
// result.
func (m *mesher) capTriangle(tri [3]node, want v3.Vec, class int8) {
	var poly []int
	src, found := 0, false
	for e := 0; e < 3; e++ {
		a, b := tri[e], tri[(e+1)%3]
		if a.f < 0 {
			poly = append(poly, m.nodeVertex(a))
			if !found {
				src, found = m.sourceOf(a), true
			}
		}
		if (a.f < 0) != (b.f < 0) {
			poly = append(poly, m.edgeVertex(a, b))
		}
	}
	if len(poly) < 3 {
		return
	}
	for i := 1; i+1 < len(poly); i++ {
		f := m.orient([3]int{poly[0], poly[i], poly[i+1]}, want)
		m.out.add(f, src, class)
	}
}
