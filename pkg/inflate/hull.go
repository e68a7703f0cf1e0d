package inflate

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/chazu/wirelattice/pkg/kernel"
)

var (
	errCollinear = errors.New("hull: points are collinear")
	errCoplanar  = errors.New("hull: points are coplanar")
)

// plane is the half-space n·p <= d with unit n.
type plane struct {
	n v3.Vec
	d float64
}

func (pl plane) eval(p v3.Vec) float64 {
	return pl.n.Dot(p) - pl.d
}

type hullFace struct {
	a, b, c int
	pl      plane
}

// convexHull returns the supporting planes of the convex hull of pts using
// incremental insertion. eps is an absolute distance below which points are
// treated as on a plane.
func convexHull(pts []v3.Vec, eps float64) ([]plane, error) {
	if len(pts) == 0 {
		return nil, errCollinear
	}
	i0 := 0
	for i, p := range pts {
		if p.X < pts[i0].X {
			i0 = i
		}
	}
	i1, best := -1, eps
	for i, p := range pts {
		if d := p.Sub(pts[i0]).Length(); d > best {
			i1, best = i, d
		}
	}
	if i1 < 0 {
		return nil, errCollinear
	}
	axis := pts[i1].Sub(pts[i0]).Normalize()
	i2, best := -1, eps
	for i, p := range pts {
		if d := p.Sub(pts[i0]).Cross(axis).Length(); d > best {
			i2, best = i, d
		}
	}
	if i2 < 0 {
		return nil, errCollinear
	}
	normal := pts[i1].Sub(pts[i0]).Cross(pts[i2].Sub(pts[i0])).Normalize()
	i3, best := -1, eps
	for i, p := range pts {
		if d := math.Abs(normal.Dot(p.Sub(pts[i0]))); d > best {
			i3, best = i, d
		}
	}
	if i3 < 0 {
		return nil, errCoplanar
	}

	inside := pts[i0].Add(pts[i1]).Add(pts[i2]).Add(pts[i3]).MulScalar(0.25)
	makeFace := func(a, b, c int) hullFace {
		n := pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[a]))
		if n.Dot(inside.Sub(pts[a])) > 0 {
			b, c = c, b
			n = n.MulScalar(-1)
		}
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		return hullFace{a: a, b: b, c: c, pl: plane{n: n, d: n.Dot(pts[a])}}
	}
	faces := []hullFace{
		makeFace(i0, i1, i2),
		makeFace(i0, i1, i3),
		makeFace(i0, i2, i3),
		makeFace(i1, i2, i3),
	}

	type edge [2]int
	for idx, p := range pts {
		if idx == i0 || idx == i1 || idx == i2 || idx == i3 {
			continue
		}
		var visible []int
		for fi, f := range faces {
			if f.pl.eval(p) > eps {
				visible = append(visible, fi)
			}
		}
		if len(visible) == 0 {
			continue
		}
		directed := make(map[edge]bool, 3*len(visible))
		for _, fi := range visible {
			f := faces[fi]
			directed[edge{f.a, f.b}] = true
			directed[edge{f.b, f.c}] = true
			directed[edge{f.c, f.a}] = true
		}
		kept := make([]hullFace, 0, len(faces)+len(visible))
		vi := 0
		for fi, f := range faces {
			if vi < len(visible) && visible[vi] == fi {
				vi++
				continue
			}
			kept = append(kept, f)
		}
		// Each horizon edge is a directed edge of a visible face whose
		// reverse is not; cone it to the new point.
		for _, fi := range visible {
			f := faces[fi]
			for _, e := range []edge{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
				if !directed[edge{e[1], e[0]}] {
					kept = append(kept, makeFace(e[0], e[1], idx))
				}
			}
		}
		faces = kept
	}

	return supportingPlanes(faces, pts, eps), nil
}

// supportingPlanes drops faces whose plane cuts through the point set, which
// happens for slivers with unreliable normals.
func supportingPlanes(faces []hullFace, pts []v3.Vec, eps float64) []plane {
	out := make([]plane, 0, len(faces))
	for _, f := range faces {
		if math.IsNaN(f.pl.d) || f.pl.n.Length() < 0.5 {
			continue
		}
		ok := true
		for _, p := range pts {
			if f.pl.eval(p) > 8*eps {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, f.pl)
		}
	}
	return out
}

// slabPlanes bounds coplanar points by the prism over their 2D hull in the
// best-fit plane, extended by halfWidth on both sides.
func slabPlanes(pts []v3.Vec, halfWidth, eps float64) ([]plane, error) {
	if len(pts) < 3 {
		return nil, errCollinear
	}
	centre, normal := bestFitPlane(pts)
	f := frameFor(normal)
	type pt2 struct{ x, y float64 }
	flat := make([]pt2, len(pts))
	for i, p := range pts {
		l := f.local(p.Sub(centre))
		flat[i] = pt2{l.X, l.Y}
	}
	sort.Slice(flat, func(i, j int) bool {
		if flat[i].x != flat[j].x {
			return flat[i].x < flat[j].x
		}
		return flat[i].y < flat[j].y
	})
	cross := func(o, a, b pt2) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}
	// Andrew's monotone chain, counter-clockwise.
	hull := make([]pt2, 0, 2*len(flat))
	for _, p := range flat {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= eps*eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(flat) - 2; i >= 0; i-- {
		p := flat[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= eps*eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]
	if len(hull) < 3 {
		return nil, errCollinear
	}

	planes := []plane{
		{n: f.W, d: f.W.Dot(centre) + halfWidth},
		{n: f.W.MulScalar(-1), d: -f.W.Dot(centre) + halfWidth},
	}
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		nx, ny := b.y-a.y, a.x-b.x
		l := math.Hypot(nx, ny)
		if l <= eps {
			continue
		}
		n := f.U.MulScalar(nx / l).Add(f.V.MulScalar(ny / l))
		origin := centre.Add(f.U.MulScalar(a.x)).Add(f.V.MulScalar(a.y))
		planes = append(planes, plane{n: n, d: n.Dot(origin)})
	}
	return planes, nil
}

// bestFitPlane returns the centroid of pts and the eigenvector of their
// covariance with the smallest eigenvalue.
func bestFitPlane(pts []v3.Vec) (v3.Vec, v3.Vec) {
	var c v3.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.MulScalar(1 / float64(len(pts)))

	cov := mat.NewSymDense(3, nil)
	for _, p := range pts {
		d := p.Sub(c)
		x := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+x[i]*x[j])
			}
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return c, v3.Vec{Z: 1}
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	k := 0
	for i, v := range values {
		if v < values[k] {
			k = i
		}
	}
	n := v3.Vec{X: vecs.At(0, k), Y: vecs.At(1, k), Z: vecs.At(2, k)}
	if n.Length() == 0 {
		return c, v3.Vec{Z: 1}
	}
	return c, n.Normalize()
}

// hullPiece is the intersection of half-spaces around a lattice node.
type hullPiece struct {
	vertex int
	planes []plane
	bbox   sdf.Box3
}

var _ kernel.Tagged = (*hullPiece)(nil)

func newHullPiece(vertex int, planes []plane, pts []v3.Vec, pad float64) *hullPiece {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	pv := v3.Vec{X: pad, Y: pad, Z: pad}
	bb := sdf.Box3{Min: lo.Sub(pv), Max: hi.Add(pv)}
	// The bounding box planes keep the piece finite even if a facet was
	// dropped as unreliable.
	all := append([]plane(nil), planes...)
	all = append(all,
		plane{n: v3.Vec{X: 1}, d: bb.Max.X}, plane{n: v3.Vec{X: -1}, d: -bb.Min.X},
		plane{n: v3.Vec{Y: 1}, d: bb.Max.Y}, plane{n: v3.Vec{Y: -1}, d: -bb.Min.Y},
		plane{n: v3.Vec{Z: 1}, d: bb.Max.Z}, plane{n: v3.Vec{Z: -1}, d: -bb.Min.Z},
	)
	return &hullPiece{vertex: vertex, planes: all, bbox: bb}
}

func (h *hullPiece) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, pl := range h.planes {
		if v := pl.eval(p); v > d {
			d = v
		}
	}
	return d
}

func (h *hullPiece) BoundingBox() sdf.Box3 { return h.bbox }

func (h *hullPiece) Source() int { return kernel.VertexSource(h.vertex) }
