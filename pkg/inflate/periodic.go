package inflate

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"

	"github.com/chazu/wirelattice/pkg/wire"
)

// FacePair links a face on the minimum wall of Axis with its periodic
// counterpart on the maximum wall.
type FacePair struct {
	Axis int
	Low  int
	High int
}

// faceSignature is a wall face reduced modulo the cell period: its wall axis
// and the quantised in-plane coordinates of its corners in sorted order.
type faceSignature struct {
	axis    int
	corners [3][2]int64
}

func wallAxes(axis int) (int, int) {
	u, v := (axis+1)%3, (axis+2)%3
	if u > v {
		u, v = v, u
	}
	return u, v
}

func (s *surface) signature(f int, cell sdf.Box3, quantum float64) faceSignature {
	axis := int(s.class[f]) / 2
	u, v := wallAxes(axis)
	sig := faceSignature{axis: axis}
	for c, vi := range s.faces[f] {
		p := s.verts[vi]
		sig.corners[c] = [2]int64{
			int64(math.Round((wire.Component(p, u) - wire.Component(cell.Min, u)) / quantum)),
			int64(math.Round((wire.Component(p, v) - wire.Component(cell.Min, v)) / quantum)),
		}
	}
	cs := sig.corners[:]
	sort.Slice(cs, func(i, j int) bool {
		if cs[i][0] != cs[j][0] {
			return cs[i][0] < cs[j][0]
		}
		return cs[i][1] < cs[j][1]
	})
	return sig
}

// pairFaces matches every minimum-wall face with a maximum-wall face of the
// same signature. Any face left without a partner is an error.
func (s *surface) pairFaces(cell sdf.Box3, quantum float64) ([]FacePair, error) {
	low := make(map[faceSignature]int)
	var lowOrder []int
	for f, c := range s.class {
		if c == interior || c%2 != 0 {
			continue
		}
		sig := s.signature(f, cell, quantum)
		if prev, ok := low[sig]; ok {
			return nil, errors.Errorf("faces %d and %d on wall %d coincide", prev, f, c/2)
		}
		low[sig] = f
		lowOrder = append(lowOrder, f)
	}

	matched := make(map[int]bool, len(low))
	pairs := make([]FacePair, 0, len(low))
	for f, c := range s.class {
		if c == interior || c%2 != 1 {
			continue
		}
		sig := s.signature(f, cell, quantum)
		l, ok := low[sig]
		if !ok || matched[l] {
			return nil, errors.Errorf("face %d on the maximum wall of axis %d has no counterpart", f, c/2)
		}
		matched[l] = true
		pairs = append(pairs, FacePair{Axis: int(c / 2), Low: l, High: f})
	}
	for _, f := range lowOrder {
		if !matched[f] {
			return nil, errors.Errorf("face %d on the minimum wall of axis %d has no counterpart", f, s.class[f]/2)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Low < pairs[j].Low })
	return pairs, nil
}
