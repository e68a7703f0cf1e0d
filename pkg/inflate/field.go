package inflate

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/wire"
)

// grid samples the periodic union field on n nodes per axis. Node indices
// run over [0,n] when meshing; samples are stored once per periodic class,
// so index n reads the same value as index 0.
type grid struct {
	n      int
	cell   sdf.Box3
	period v3.Vec
	h      v3.Vec
	values []float64
	owner  []int32
	// image is the index into shifts of the periodic image of the owner
	// that produced each sample; the image sits at homes[owner] plus that
	// shift.
	image  []int8
	homes  []v3.Vec
	shifts []v3.Vec
}

func newGrid(cell sdf.Box3, n int) *grid {
	period := cell.Max.Sub(cell.Min)
	g := &grid{
		n:      n,
		cell:   cell,
		period: period,
		h:      period.MulScalar(1 / float64(n)),
		values: make([]float64, n*n*n),
		owner:  make([]int32, n*n*n),
		image:  make([]int8, n*n*n),
		shifts: wire.ImageShifts(period),
	}
	for i := range g.values {
		g.values[i] = math.Inf(1)
		g.owner[i] = -1
	}
	return g
}

// coord returns the position of node index i on axis. Index n lands exactly
// on the cell maximum.
func (g *grid) coord(axis, i int) float64 {
	if i == g.n {
		return wire.Component(g.cell.Max, axis)
	}
	return wire.Component(g.cell.Min, axis) + float64(i)*wire.Component(g.h, axis)
}

func (g *grid) pos(i, j, k int) v3.Vec {
	return v3.Vec{X: g.coord(0, i), Y: g.coord(1, j), Z: g.coord(2, k)}
}

// sample returns the storage index of node (i,j,k), wrapping index n to 0.
func (g *grid) sample(i, j, k int) int {
	n := g.n
	return i%n + n*(j%n+n*(k%n))
}

// gid returns a unique id for node (i,j,k) with indices in [0,n]. Nodes on
// opposite walls get different ids.
func (g *grid) gid(i, j, k int) int {
	m := g.n + 1
	return i + m*(j+m*k)
}

func (g *grid) value(i, j, k int) float64 { return g.values[g.sample(i, j, k)] }

// source returns the face source for node (i,j,k) with indices in [0,n]:
// the element behind the piece image that owns the node. A node on a
// maximum wall shares its sample with the minimum wall, so the image is
// moved one period further along that axis.
func (g *grid) source(tags *tagger, i, j, k int) int {
	id := g.sample(i, j, k)
	o := g.owner[id]
	if o < 0 {
		return 0
	}
	off := g.homes[o].Add(g.shifts[g.image[id]])
	for axis, idx := range [3]int{i, j, k} {
		if idx == g.n {
			off = wire.WithComponent(off, axis, wire.Component(off, axis)+wire.Component(g.period, axis))
		}
	}
	return tags.source(int(o), off)
}

// fill evaluates every piece and its periodic images on the nodes near its
// bounding box, keeping the minimum and the piece that produced it. Values
// closer to zero than snap are pushed to +snap so no node lies on the
// surface. A piece with a non-finite bounding box is an error.
func (g *grid) fill(pieces []kernel.Tagged, snap float64) error {
	margin := 2 * math.Max(g.h.X, math.Max(g.h.Y, g.h.Z))
	g.homes = make([]v3.Vec, len(pieces))
	for pi, pc := range pieces {
		bb := pc.BoundingBox()
		if !finite(bb.Min) || !finite(bb.Max) {
			return errors.Errorf("piece %d (source %d) has bounding box %v", pi, pc.Source(), bb)
		}
		centre := bb.Min.Add(bb.Max).MulScalar(0.5)
		var home v3.Vec
		for axis := 0; axis < 3; axis++ {
			l := wire.Component(g.period, axis)
			k := math.Floor((wire.Component(centre, axis) - wire.Component(g.cell.Min, axis)) / l)
			home = wire.WithComponent(home, axis, -k*l)
		}
		g.homes[pi] = home
		for si, shift := range g.shifts {
			off := home.Add(shift)
			var lo, hi [3]int
			empty := false
			for axis := 0; axis < 3; axis++ {
				origin := wire.Component(g.cell.Min, axis)
				h := wire.Component(g.h, axis)
				a := (wire.Component(bb.Min, axis) + wire.Component(off, axis) - margin - origin) / h
				b := (wire.Component(bb.Max, axis) + wire.Component(off, axis) + margin - origin) / h
				lo[axis] = int(math.Max(0, math.Ceil(a)))
				hi[axis] = int(math.Min(float64(g.n-1), math.Floor(b)))
				if lo[axis] > hi[axis] {
					empty = true
				}
			}
			if empty {
				continue
			}
			for k := lo[2]; k <= hi[2]; k++ {
				for j := lo[1]; j <= hi[1]; j++ {
					for i := lo[0]; i <= hi[0]; i++ {
						id := g.sample(i, j, k)
						v := pc.Evaluate(g.pos(i, j, k).Sub(off))
						if v < g.values[id] {
							g.values[id] = v
							g.owner[id] = int32(pi)
							g.image[id] = int8(si)
						}
					}
				}
			}
		}
	}
	for i, v := range g.values {
		if math.Abs(v) < snap {
			g.values[i] = snap
		}
	}
	return nil
}

func finite(p v3.Vec) bool {
	for _, x := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// inside counts the nodes with a negative sample.
func (g *grid) inside() int {
	n := 0
	for _, v := range g.values {
		if v < 0 {
			n++
		}
	}
	return n
}
