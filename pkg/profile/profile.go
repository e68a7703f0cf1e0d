// Package profile provides the closed 2D cross-section swept along every
// wire edge. Profiles are immutable once built and may be shared freely
// between goroutines.
package profile

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
)

// ErrInvalid indicates a profile with too few samples or no area.
var ErrInvalid = errors.New("profile: invalid cross-section")

// Profile is a closed loop of 2D samples, counter-clockwise.
type Profile struct {
	samples []v2.Vec
	radius  float64
}

// Isotropic returns a regular n-gon inscribed in the unit circle.
func Isotropic(n int) (*Profile, error) {
	if n < 3 {
		return nil, errors.Wrapf(ErrInvalid, "isotropic profile needs at least 3 samples, got %d", n)
	}
	samples := make([]v2.Vec, n)
	for i := range samples {
		a := 2 * math.Pi * float64(i) / float64(n)
		samples[i] = v2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	return &Profile{samples: samples, radius: 1}, nil
}

// MustIsotropic is Isotropic that panics on error.
func MustIsotropic(n int) *Profile {
	p, err := Isotropic(n)
	if err != nil {
		panic(err)
	}
	return p
}

// New builds a profile from an arbitrary simple loop. Clockwise loops are
// reversed.
func New(samples []v2.Vec) (*Profile, error) {
	if len(samples) < 3 {
		return nil, errors.Wrapf(ErrInvalid, "profile needs at least 3 samples, got %d", len(samples))
	}
	s := append([]v2.Vec(nil), samples...)
	area := signedArea(s)
	if math.Abs(area) < 1e-12 {
		return nil, errors.Wrap(ErrInvalid, "profile has zero area")
	}
	if area < 0 {
		for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
			s[i], s[j] = s[j], s[i]
		}
	}
	r := 0.0
	for _, p := range s {
		r = math.Max(r, p.Length())
	}
	return &Profile{samples: s, radius: r}, nil
}

// Len returns the number of samples.
func (p *Profile) Len() int {
	return len(p.samples)
}

// Samples returns a copy of the loop.
func (p *Profile) Samples() []v2.Vec {
	return append([]v2.Vec(nil), p.samples...)
}

// Sample returns sample i.
func (p *Profile) Sample(i int) v2.Vec {
	return p.samples[i]
}

// CircumRadius returns the largest distance of a sample from the origin.
func (p *Profile) CircumRadius() float64 {
	return p.radius
}

// SignedDistance returns the distance from q to the loop, negative inside.
func (p *Profile) SignedDistance(q v2.Vec) float64 {
	d := math.Inf(1)
	inside := false
	n := len(p.samples)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.samples[j], p.samples[i]
		d = math.Min(d, segmentDistance(q, a, b))
		if (b.Y > q.Y) != (a.Y > q.Y) &&
			q.X < (a.X-b.X)*(q.Y-b.Y)/(a.Y-b.Y)+b.X {
			inside = !inside
		}
	}
	if inside {
		return -d
	}
	return d
}

// Area returns the enclosed area.
func (p *Profile) Area() float64 {
	return signedArea(p.samples)
}

func signedArea(s []v2.Vec) float64 {
	a := 0.0
	for i := range s {
		j := (i + 1) % len(s)
		a += s[i].X*s[j].Y - s[j].X*s[i].Y
	}
	return a / 2
}

func segmentDistance(q, a, b v2.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, q.Sub(a).Dot(ab)/l2))
	}
	return q.Sub(a.Add(ab.MulScalar(t))).Length()
}
