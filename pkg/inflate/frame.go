package inflate

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/wirelattice/pkg/profile"
	"github.com/chazu/wirelattice/pkg/wire"
)

// frame is an orthonormal basis with W along an edge.
type frame struct {
	U, V, W v3.Vec
}

// canonicalDir flips d so its first non-negligible component is positive.
// Opposite directions share one frame, which keeps rings of collinear edges
// aligned.
func canonicalDir(d v3.Vec) v3.Vec {
	for axis := 0; axis < 3; axis++ {
		c := wire.Component(d, axis)
		if math.Abs(c) > 1e-12 {
			if c < 0 {
				return d.MulScalar(-1)
			}
			return d
		}
	}
	return d
}

// frameFor returns the cross-section frame used for direction d. The
// result depends only on the line through d, not its sign.
func frameFor(d v3.Vec) frame {
	w := canonicalDir(d.Normalize())
	// Use the axis least aligned with w as the helper.
	helper := v3.Vec{X: 1}
	ax, ay, az := math.Abs(w.X), math.Abs(w.Y), math.Abs(w.Z)
	switch {
	case ay <= ax && ay <= az:
		helper = v3.Vec{Y: 1}
	case az <= ax && az <= ay:
		helper = v3.Vec{Z: 1}
	}
	u := w.Cross(helper).Normalize()
	v := w.Cross(u)
	return frame{U: u, V: v, W: w}
}

// local expresses q (relative to a point on the axis) in profile coordinates.
func (f frame) local(q v3.Vec) v2.Vec {
	return v2.Vec{X: q.Dot(f.U), Y: q.Dot(f.V)}
}

// ring places the profile, scaled by radius, in the plane through centre
// spanned by the frame.
func (f frame) ring(p *profile.Profile, centre v3.Vec, radius float64) []v3.Vec {
	out := make([]v3.Vec, p.Len())
	for i := range out {
		s := p.Sample(i)
		out[i] = centre.Add(f.U.MulScalar(radius * s.X)).Add(f.V.MulScalar(radius * s.Y))
	}
	return out
}
