package inflate

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/profile"
)

// tube is the profile swept along an edge between two ring offsets. The
// radius varies linearly from r0 at the start vertex to r1 at the end.
type tube struct {
	edge   int
	p0     v3.Vec
	length float64
	frame  frame
	r0, r1 float64
	t0, t1 float64 // axial extent, measured from p0
	prof   *profile.Profile
	bbox   sdf.Box3
}

var _ kernel.Tagged = (*tube)(nil)

func newTube(edge int, p0, p1 v3.Vec, r0, r1, t0, t1 float64, prof *profile.Profile) *tube {
	d := p1.Sub(p0)
	t := &tube{
		edge:   edge,
		p0:     p0,
		length: d.Length(),
		frame:  frameFor(d),
		r0:     r0,
		r1:     r1,
		t0:     t0,
		t1:     t1,
		prof:   prof,
	}
	// The frame may point against the edge; keep W along p0 -> p1.
	if t.frame.W.Dot(d) < 0 {
		t.frame.W = t.frame.W.MulScalar(-1)
	}
	reach := math.Max(r0, r1) * prof.CircumRadius()
	a := p0.Add(t.frame.W.MulScalar(t0))
	b := p0.Add(t.frame.W.MulScalar(t1))
	pad := v3.Vec{X: reach, Y: reach, Z: reach}
	t.bbox = sdf.Box3{
		Min: v3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}.Sub(pad),
		Max: v3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}.Add(pad),
	}
	return t
}

func (t *tube) radiusAt(s float64) float64 {
	f := s / t.length
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return t.r0 + (t.r1-t.r0)*f
}

// Evaluate returns the scaled profile distance in the cross-section plane,
// bounded by the two end planes.
func (t *tube) Evaluate(p v3.Vec) float64 {
	w := p.Sub(t.p0)
	s := w.Dot(t.frame.W)
	ends := math.Max(t.t0-s, s-t.t1)
	r := t.radiusAt(s)
	q := w.Sub(t.frame.W.MulScalar(s))
	if r <= 0 {
		return math.Hypot(q.Length(), math.Max(ends, 0))
	}
	l := t.frame.local(q)
	d := r * t.prof.SignedDistance(v2.Vec{X: l.X / r, Y: l.Y / r})
	return math.Max(d, ends)
}

func (t *tube) BoundingBox() sdf.Box3 { return t.bbox }

func (t *tube) Source() int { return kernel.EdgeSource(t.edge) }
