package meshcheck

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/wire"
)

// CheckPeriodic returns an error unless, for each axis, the faces lying on
// the maximum wall are exactly the faces on the minimum wall translated by
// the cell period.
func CheckPeriodic(m *kernel.Mesh, opts ...Option) error {
	if err := m.Check(); err != nil {
		return err
	}
	cell, tol := resolve(m, opts)
	for axis := 0; axis < 3; axis++ {
		if err := checkAxis(m, cell, axis, tol); err != nil {
			return err
		}
	}
	return nil
}

// IsPeriodic reports whether opposite cell walls carry matching faces.
func IsPeriodic(m *kernel.Mesh, opts ...Option) bool {
	return CheckPeriodic(m, opts...) == nil
}

func onWall(m *kernel.Mesh, f, axis int, w, tol float64) bool {
	for _, v := range m.Face(f) {
		if d := wire.Component(m.Vertex(v), axis) - w; d > tol || d < -tol {
			return false
		}
	}
	return true
}

func checkAxis(m *kernel.Mesh, cell sdf.Box3, axis int, tol float64) error {
	lo, hi := wire.Component(cell.Min, axis), wire.Component(cell.Max, axis)
	shift := wire.WithComponent(v3.Vec{}, axis, hi-lo)
	key := (axis + 1) % 3

	// Minimum-wall faces indexed by one in-plane centroid coordinate.
	tree := redblacktree.NewWith(utils.Float64Comparator)
	low := 0
	for f := 0; f < m.FaceCount(); f++ {
		if !onWall(m, f, axis, lo, tol) {
			continue
		}
		k := wire.Component(m.Centroid(f), key)
		bucket, _ := tree.Get(k)
		list, _ := bucket.([]int)
		tree.Put(k, append(list, f))
		low++
	}

	used := make(map[int]bool, low)
	high := 0
	for f := 0; f < m.FaceCount(); f++ {
		if !onWall(m, f, axis, hi, tol) {
			continue
		}
		high++
		k := wire.Component(m.Centroid(f), key)
		if !matchFace(m, tree, used, f, shift, k, tol) {
			return errors.Errorf("axis %d: face %d on the maximum wall has no counterpart", axis, f)
		}
	}
	if low != high {
		return errors.Errorf("axis %d: %d faces on the minimum wall, %d on the maximum", axis, low, high)
	}
	return nil
}

// matchFace finds an unused minimum-wall face with centroid key within tol
// of k whose corners equal those of face f moved back by shift.
func matchFace(m *kernel.Mesh, tree *redblacktree.Tree, used map[int]bool, f int, shift v3.Vec, k, tol float64) bool {
	node, ok := tree.Ceiling(k - tol)
	if !ok {
		return false
	}
	it := tree.IteratorAt(node)
	for {
		if it.Key().(float64) > k+tol {
			return false
		}
		for _, g := range it.Value().([]int) {
			if !used[g] && sameCorners(m, g, f, shift, tol) {
				used[g] = true
				return true
			}
		}
		if !it.Next() {
			return false
		}
	}
}

func sameCorners(m *kernel.Mesh, low, high int, shift v3.Vec, tol float64) bool {
	a, b := m.Face(low), m.Face(high)
	if len(a) != len(b) {
		return false
	}
	for _, vb := range b {
		p := m.Vertex(vb).Sub(shift)
		found := false
		for _, va := range a {
			d := m.Vertex(va).Sub(p)
			if abs(d.X) <= tol && abs(d.Y) <= tol && abs(d.Z) <= tol {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
