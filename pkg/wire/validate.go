package wire

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ValidationError describes one problem that prevents inflation.
type ValidationError struct {
	Edges   []int // offending edges, if any
	Message string
}

func (e ValidationError) Error() string {
	if len(e.Edges) == 0 {
		return e.Message
	}
	return fmt.Sprintf("edges %v: %s", e.Edges, e.Message)
}

// Validate runs the pre-inflation checks and returns every finding. An empty
// slice means the network can be inflated. Structural problems are
// reported before any geometric check runs.
func (n *Network) Validate(tol float64) []ValidationError {
	errs := validateStructure(n)
	if len(errs) > 0 {
		return errs
	}
	if errs := validateLengths(n, tol); len(errs) > 0 {
		return errs
	}
	lat, err := n.Lattice(tol)
	if err != nil {
		return []ValidationError{{Message: err.Error()}}
	}
	return validateCrossings(n, lat, tol)
}

// ValidateErr is Validate folded into a single error wrapping ErrTopology
// or ErrGeometry, or nil.
func (n *Network) ValidateErr(tol float64) error {
	errs := n.Validate(tol)
	if len(errs) == 0 {
		return nil
	}
	kind := ErrGeometry
	if len(validateStructure(n)) > 0 {
		kind = ErrTopology
	}
	return errors.Wrapf(kind, "%d problem(s), first: %v", len(errs), errs[0])
}

// validateStructure checks the network is non-empty and its connectivity is
// computed.
func validateStructure(n *Network) []ValidationError {
	var errs []ValidationError
	if len(n.vertices) == 0 {
		errs = append(errs, ValidationError{Message: "network has no vertices"})
	}
	if len(n.edges) == 0 {
		errs = append(errs, ValidationError{Message: "network has no edges"})
	}
	if n.adjacency == nil {
		errs = append(errs, ValidationError{Message: "connectivity has not been computed"})
	}
	p := n.Period()
	if p.X <= 0 || p.Y <= 0 || p.Z <= 0 {
		errs = append(errs, ValidationError{Message: fmt.Sprintf("periodic cell has non-positive extent %v", p)})
	}
	return errs
}

// validateLengths reports edges whose endpoints are distinct vertices at
// the same position. Such an edge has no direction to sweep along.
func validateLengths(n *Network, tol float64) []ValidationError {
	var errs []ValidationError
	for e, ends := range n.edges {
		if l := n.vertices[ends[1]].Sub(n.vertices[ends[0]]).Length(); l <= tol {
			errs = append(errs, ValidationError{
				Edges:   []int{e},
				Message: fmt.Sprintf("edge has length %g, not longer than the tolerance %g", l, tol),
			})
		}
	}
	return errs
}

// validateCrossings reports pairs of distinct lattice edges that come closer
// than tol anywhere except at a shared lattice node. Periodic images one
// cell away are included.
func validateCrossings(n *Network, lat *Lattice, tol float64) []ValidationError {
	var errs []ValidationError
	period := n.Period()

	var canonical []int
	for e := range n.edges {
		if lat.Canonical(e) {
			canonical = append(canonical, e)
		}
	}

	for i, e := range canonical {
		a0, a1 := n.vertices[n.edges[e][0]], n.vertices[n.edges[e][1]]
		for _, f := range canonical[i+1:] {
			b0, b1 := n.vertices[n.edges[f][0]], n.vertices[n.edges[f][1]]
			for _, shift := range ImageShifts(period) {
				c0, c1 := b0.Add(shift), b1.Add(shift)
				if !boxesNear(a0, a1, c0, c1, tol) {
					continue
				}
				shared, overlap := sharedEnd(a0, a1, c0, c1, tol)
				if overlap {
					errs = append(errs, ValidationError{
						Edges:   []int{e, f},
						Message: "wires overlap beyond their shared vertex",
					})
					continue
				}
				if shared {
					continue
				}
				if SegmentDistance(a0, a1, c0, c1) <= tol {
					errs = append(errs, ValidationError{
						Edges:   []int{e, f},
						Message: "wires intersect away from a shared vertex",
					})
				}
			}
		}
	}
	return errs
}

// ImageShifts returns the 27 translations {-1,0,1}^3 scaled by period, the
// zero shift first.
func ImageShifts(period v3.Vec) []v3.Vec {
	shifts := make([]v3.Vec, 0, 27)
	shifts = append(shifts, v3.Vec{})
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				shifts = append(shifts, v3.Vec{
					X: float64(i) * period.X,
					Y: float64(j) * period.Y,
					Z: float64(k) * period.Z,
				})
			}
		}
	}
	return shifts
}

func boxesNear(a0, a1, b0, b1 v3.Vec, tol float64) bool {
	for axis := 0; axis < 3; axis++ {
		alo, ahi := minmax(Component(a0, axis), Component(a1, axis))
		blo, bhi := minmax(Component(b0, axis), Component(b1, axis))
		if alo > bhi+tol || blo > ahi+tol {
			return false
		}
	}
	return true
}

// sharedEnd reports whether segments a and b meet at an endpoint, and
// whether at such an endpoint they leave in the same direction. Two
// segments from a shared end overlap when the tip of the shorter one lies
// within tol of the line of the longer one on the same side.
func sharedEnd(a0, a1, b0, b1 v3.Vec, tol float64) (shared, overlap bool) {
	as := [2][2]v3.Vec{{a0, a1}, {a1, a0}}
	bs := [2][2]v3.Vec{{b0, b1}, {b1, b0}}
	for _, a := range as {
		for _, b := range bs {
			if a[0].Sub(b[0]).Length() > tol {
				continue
			}
			shared = true
			da, db := a[1].Sub(a[0]), b[1].Sub(b[0])
			la, lb := da.Length(), db.Length()
			if la == 0 || lb == 0 || da.Dot(db) <= 0 {
				continue
			}
			if math.Min(la, lb)*da.Cross(db).Length()/(la*lb) <= tol {
				overlap = true
			}
		}
	}
	return shared, overlap
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// SegmentDistance returns the shortest distance between segments p0-p1 and
// q0-q1.
func SegmentDistance(p0, p1, q0, q1 v3.Vec) float64 {
	d1 := p1.Sub(p0)
	d2 := q1.Sub(q0)
	r := p0.Sub(q0)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	const eps = 1e-300
	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return r.Length()
	case a <= eps:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > 0 {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	c1 := p0.Add(d1.MulScalar(s))
	c2 := q0.Add(d2.MulScalar(t))
	return c1.Sub(c2).Length()
}

// PointSegmentDistance returns the distance from p to segment a-b.
func PointSegmentDistance(p, a, b v3.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := clamp01(p.Sub(a).Dot(ab) / l2)
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
