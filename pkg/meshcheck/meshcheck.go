// Package meshcheck validates inflated meshes: closedness, manifoldness,
// periodicity across the cell walls and face provenance. All checks are
// pure functions of their inputs and safe to call concurrently.
package meshcheck

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/wire"
)

// DefaultRelativeTolerance is multiplied by the largest cell period when no
// explicit tolerance is given.
const DefaultRelativeTolerance = 1e-6

// Option configures the geometric checks.
type Option func(*options)

type options struct {
	tol    float64
	cell   *sdf.Box3
	direct bool
}

// WithTolerance sets an absolute distance tolerance.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tol = tol }
}

// WithCell sets the periodic cell. Without it the cell is the vertex
// bounding box.
func WithCell(cell sdf.Box3) Option {
	return func(o *options) { o.cell = &cell }
}

// WithoutImages makes CheckFaceSources measure each face against its
// source element where the element is, not against its nearest periodic
// image.
func WithoutImages() Option {
	return func(o *options) { o.direct = true }
}

func resolve(m *kernel.Mesh, opts []Option) (sdf.Box3, float64) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var cell sdf.Box3
	if o.cell != nil {
		cell = *o.cell
	} else {
		cell = bounds(m)
	}
	tol := o.tol
	if tol <= 0 {
		p := cell.Max.Sub(cell.Min)
		tol = DefaultRelativeTolerance * math.Max(p.X, math.Max(p.Y, p.Z))
	}
	return cell, tol
}

func bounds(m *kernel.Mesh) sdf.Box3 {
	if m.VertexCount() == 0 {
		return sdf.Box3{}
	}
	lo, hi := m.Vertex(0), m.Vertex(0)
	for i := 1; i < m.VertexCount(); i++ {
		p := m.Vertex(i)
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

type edgeKey [2]int

func undirected(a, b int) edgeKey {
	if a > b {
		return edgeKey{b, a}
	}
	return edgeKey{a, b}
}

// eachEdge calls fn for every directed boundary edge of every face.
func eachEdge(m *kernel.Mesh, fn func(f, a, b int)) {
	for f := 0; f < m.FaceCount(); f++ {
		face := m.Face(f)
		for i, a := range face {
			fn(f, a, face[(i+1)%len(face)])
		}
	}
}

// CheckWaterTight returns an error unless every edge is shared by exactly
// two faces.
func CheckWaterTight(m *kernel.Mesh) error {
	if err := m.Check(); err != nil {
		return err
	}
	if m.FaceCount() == 0 {
		return errors.New("mesh has no faces")
	}
	uses := make(map[edgeKey]int)
	eachEdge(m, func(_, a, b int) { uses[undirected(a, b)]++ })
	for e, n := range uses {
		if n != 2 {
			return errors.Errorf("edge %v is used by %d faces", e, n)
		}
	}
	return nil
}

// IsWaterTight reports whether the mesh is closed.
func IsWaterTight(m *kernel.Mesh) bool {
	return CheckWaterTight(m) == nil
}

// CheckOriented returns an error unless every directed edge is used at most
// once, i.e. adjacent faces have compatible winding.
func CheckOriented(m *kernel.Mesh) error {
	if err := m.Check(); err != nil {
		return err
	}
	seen := make(map[edgeKey]int)
	var bad error
	eachEdge(m, func(f, a, b int) {
		if bad != nil {
			return
		}
		if g, ok := seen[edgeKey{a, b}]; ok {
			bad = errors.Errorf("faces %d and %d both traverse edge %d->%d", g, f, a, b)
			return
		}
		seen[edgeKey{a, b}] = f
	})
	return bad
}

// IsOriented reports whether face windings are consistent.
func IsOriented(m *kernel.Mesh) bool {
	return CheckOriented(m) == nil
}

// CheckManifold returns an error if an edge has more than two faces, a face
// repeats a vertex or duplicates another face, or the faces around a vertex
// do not form a single fan.
func CheckManifold(m *kernel.Mesh) error {
	if err := m.Check(); err != nil {
		return err
	}
	uses := make(map[edgeKey]int)
	eachEdge(m, func(_, a, b int) { uses[undirected(a, b)]++ })
	for e, n := range uses {
		if n > 2 {
			return errors.Errorf("edge %v is used by %d faces", e, n)
		}
	}

	faces := make(map[[4]int]int)
	link := make([][]edgeKey, m.VertexCount())
	for f := 0; f < m.FaceCount(); f++ {
		face := m.Face(f)
		key := [4]int{-1, -1, -1, -1}
		copy(key[:], face)
		sortInts(key[:len(face)])
		for i := 1; i < len(face); i++ {
			if key[i] == key[i-1] {
				return errors.Errorf("face %d repeats vertex %d", f, key[i])
			}
		}
		if g, ok := faces[key]; ok {
			return errors.Errorf("faces %d and %d are duplicates", g, f)
		}
		faces[key] = f
		for i, v := range face {
			prev := face[(i+len(face)-1)%len(face)]
			next := face[(i+1)%len(face)]
			link[v] = append(link[v], undirected(prev, next))
		}
	}

	for v, edges := range link {
		if len(edges) == 0 {
			continue
		}
		if !singleFan(edges) {
			return errors.Errorf("faces around vertex %d do not form a single fan", v)
		}
	}
	return nil
}

// singleFan reports whether the link edges form one path or cycle.
func singleFan(edges []edgeKey) bool {
	degree := make(map[int]int)
	parent := make(map[int]int)
	var find func(int) int
	find = func(x int) int {
		p, ok := parent[x]
		if !ok || p == x {
			parent[x] = x
			return x
		}
		r := find(p)
		parent[x] = r
		return r
	}
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
		if degree[e[0]] > 2 || degree[e[1]] > 2 {
			return false
		}
		parent[find(e[0])] = find(e[1])
	}
	root := find(edges[0][0])
	for x := range degree {
		if find(x) != root {
			return false
		}
	}
	return true
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// IsManifold reports whether the mesh is a 2-manifold, possibly with
// boundary.
func IsManifold(m *kernel.Mesh) bool {
	return CheckManifold(m) == nil
}

// CheckFaceSources returns an error if a source tag does not name an edge
// or vertex of net. With maxDistance > 0 every face centroid must also lie
// within maxDistance (plus the tolerance) of some periodic image of its
// source. Images are taken over the network cell unless WithCell is given,
// and not at all with WithoutImages.
func CheckFaceSources(m *kernel.Mesh, net *wire.Network, maxDistance float64, opts ...Option) error {
	if len(m.FaceSources) != m.FaceCount() {
		return errors.Errorf("%d face sources for %d faces", len(m.FaceSources), m.FaceCount())
	}
	cell, tol := resolve(m, append([]Option{WithCell(net.Cell())}, opts...))
	shifts := wire.ImageShifts(cell.Max.Sub(cell.Min))
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.direct {
		shifts = shifts[:1]
	}
	for f, tag := range m.FaceSources {
		idx, isVertex := kernel.DecodeSource(tag)
		if isVertex && idx >= net.NumVertices() {
			return errors.Errorf("face %d: vertex source %d out of range", f, idx)
		}
		if !isVertex && idx >= net.NumEdges() {
			return errors.Errorf("face %d: edge source %d out of range", f, idx)
		}
		if maxDistance <= 0 {
			continue
		}
		c := m.Centroid(f)
		best := math.Inf(1)
		for _, s := range shifts {
			p := c.Sub(s)
			var d float64
			if isVertex {
				d = p.Sub(net.Vertex(idx)).Length()
			} else {
				e := net.Edge(idx)
				d = wire.PointSegmentDistance(p, net.Vertex(e[0]), net.Vertex(e[1]))
			}
			best = math.Min(best, d)
		}
		if best > maxDistance+tol {
			return errors.Errorf("face %d is %g from its source %d, limit %g", f, best, tag, maxDistance)
		}
	}
	return nil
}

// FaceSourceIsValid reports whether every face source names an element of
// net lying within maxDistance of the face.
func FaceSourceIsValid(m *kernel.Mesh, net *wire.Network, maxDistance float64, opts ...Option) bool {
	return CheckFaceSources(m, net, maxDistance, opts...) == nil
}
