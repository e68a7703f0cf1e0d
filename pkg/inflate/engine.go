package inflate

import (
	"math"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/profile"
	"github.com/chazu/wirelattice/pkg/wire"
)

// Defaults.
const (
	DefaultProfileSamples = 8
	// Grid spacing is the smallest tube radius divided by CellsPerRadius,
	// bounded to [MinResolution, MaxResolution] cells per axis.
	CellsPerRadius = 2.5
	MinResolution  = 16
	MaxResolution  = 96
	// DefaultRelativeTolerance scales the largest cell period into the
	// geometric tolerance.
	DefaultRelativeTolerance = 1e-6
)

// Engine inflates one wire network. Configure it with the setters, call
// Inflate, then read the result. Any setter discards a previous result.
// An Engine is not safe for concurrent use; separate engines may share a
// network and a profile.
type Engine struct {
	net           *wire.Network
	thicknessType wire.ThicknessType
	thickness     []float64
	prof          *profile.Profile
	scheme        string
	iterations    int
	resolution    int
	tolerance     float64

	result *result
}

type result struct {
	mesh   *kernel.Mesh
	pairs  []FacePair
	pieces kernel.Union
}

// New returns an engine for net with per-edge thickness and the default
// isotropic profile.
func New(net *wire.Network) *Engine {
	return &Engine{
		net:           net,
		thicknessType: wire.PerEdge,
		prof:          profile.MustIsotropic(DefaultProfileSamples),
	}
}

// SetThicknessType selects whether thickness values are per edge or per
// vertex.
func (e *Engine) SetThicknessType(t wire.ThicknessType) {
	e.thicknessType = t
	e.result = nil
}

// SetThickness sets the tube radii. The slice is copied.
func (e *Engine) SetThickness(values []float64) {
	e.thickness = append([]float64(nil), values...)
	e.result = nil
}

// SetThicknessField sets type and values together.
func (e *Engine) SetThicknessField(f wire.ThicknessField) {
	e.SetThicknessType(f.Type)
	e.SetThickness(f.Values)
}

// SetProfile replaces the cross-section. Profiles are immutable and may be
// shared between engines.
func (e *Engine) SetProfile(p *profile.Profile) {
	e.prof = p
	e.result = nil
}

// WithRefinement requests iterations rounds of SchemeLoop or SchemeSimple
// subdivision after meshing.
func (e *Engine) WithRefinement(scheme string, iterations int) {
	e.scheme = scheme
	e.iterations = iterations
	e.result = nil
}

// SetResolution fixes the number of grid cells per axis. Zero selects a
// resolution from the smallest radius.
func (e *Engine) SetResolution(cellsPerAxis int) {
	e.resolution = cellsPerAxis
	e.result = nil
}

// SetTolerance sets the geometric tolerance used to merge periodic
// vertices, detect crossings and pair wall faces. Zero selects
// DefaultRelativeTolerance times the largest cell period.
func (e *Engine) SetTolerance(tol float64) {
	e.tolerance = tol
	e.result = nil
}

// Inflated reports whether a result is available.
func (e *Engine) Inflated() bool {
	return e.result != nil
}

// Inflate builds the mesh. On failure the engine holds no result and the
// error matches ErrRuntime.
func (e *Engine) Inflate() error {
	e.result = nil
	res, err := e.run()
	if err != nil {
		return err
	}
	e.result = res
	return nil
}

func (e *Engine) run() (*result, error) {
	net := e.net
	if net == nil {
		return nil, failf("validate", "no network")
	}
	if e.prof == nil {
		return nil, failf("validate", "no profile")
	}
	period := net.Period()
	size := math.Max(period.X, math.Max(period.Y, period.Z))
	tol := e.tolerance
	if tol <= 0 {
		tol = DefaultRelativeTolerance * size
	}
	if err := net.ValidateErr(tol); err != nil {
		return nil, fail("validate", err)
	}
	field := wire.ThicknessField{Type: e.thicknessType, Values: e.thickness}
	if e.thickness == nil {
		return nil, failf("validate", "thickness has not been set")
	}
	if err := field.Check(net); err != nil {
		return nil, fail("validate", err)
	}
	smooth := false
	switch e.scheme {
	case "":
	case SchemeLoop:
		smooth = true
	case SchemeSimple:
	default:
		return nil, failf("validate", "unknown refinement scheme %q", e.scheme)
	}
	if e.iterations < 0 {
		return nil, failf("validate", "negative refinement iterations %d", e.iterations)
	}

	lat, err := net.Lattice(tol)
	if err != nil {
		return nil, fail("lattice", err)
	}
	lay := newLayout(net, lat, field, e.prof)
	if lay.degenerate > 0 {
		klog.Warningf("inflate: %d arms have a nearly parallel neighbour; ring offsets clamped", lay.degenerate)
	}
	tubes := lay.tubes(field)
	junctions, kinds := lay.junctions(tol * 0.1)
	pieces := append(tubes, junctions...)
	klog.V(2).Infof("inflate: %d lattice nodes, %d tubes, junctions %v", len(lat.Nodes), len(tubes), kinds)
	if len(pieces) == 0 {
		return nil, failf("sweep", "no geometry: every radius is zero")
	}

	n := e.resolution
	if n <= 0 {
		n = defaultResolution(field, size, e.prof.CircumRadius())
	}
	g := newGrid(net.Cell(), n)
	hmin := math.Min(g.h.X, math.Min(g.h.Y, g.h.Z))
	if err := g.fill(pieces, 1e-3*hmin); err != nil {
		return nil, fail("sample", err)
	}
	klog.V(2).Infof("inflate: sampled %d^3 grid, %d nodes inside", n, g.inside())

	m := newMesher(g, newTagger(net, lat, pieces, tol))
	m.march()
	m.caps()
	surf := m.out
	if len(surf.faces) == 0 {
		return nil, failf("mesh", "surface is empty at resolution %d", n)
	}
	for i := 0; i < e.iterations && e.scheme != ""; i++ {
		surf = surf.subdivide(smooth, net.Cell())
	}
	pairs, err := surf.pairFaces(net.Cell(), tol)
	if err != nil {
		return nil, fail("periodic", err)
	}
	klog.V(2).Infof("inflate: %d vertices, %d faces, %d periodic pairs", len(surf.verts), len(surf.faces), len(pairs))

	union := make(kernel.Union, len(pieces))
	for i, p := range pieces {
		union[i] = p
	}
	return &result{mesh: surf.toMesh(), pairs: pairs, pieces: union}, nil
}

func defaultResolution(field wire.ThicknessField, size, circ float64) int {
	rmin := math.Inf(1)
	for _, v := range field.Values {
		if v > 0 && v < rmin {
			rmin = v
		}
	}
	n := MinResolution
	if !math.IsInf(rmin, 1) {
		n = int(math.Ceil(size / (rmin * circ / CellsPerRadius)))
	}
	if n < MinResolution {
		n = MinResolution
	}
	if n > MaxResolution {
		n = MaxResolution
	}
	return n
}

func (s *surface) toMesh() *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices:    make([]float64, 0, 3*len(s.verts)),
		Faces:       make([]int, 0, 3*len(s.faces)),
		FaceSize:    3,
		FaceSources: append([]int(nil), s.sources...),
	}
	for _, p := range s.verts {
		m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	}
	for _, f := range s.faces {
		m.Faces = append(m.Faces, f[0], f[1], f[2])
	}
	return m
}

func (e *Engine) get() (*result, error) {
	if e.result == nil {
		return nil, errors.WithStack(ErrState)
	}
	return e.result, nil
}

// Mesh returns a copy of the inflated mesh.
func (e *Engine) Mesh() (*kernel.Mesh, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return r.mesh.Clone(), nil
}

// Vertices returns the vertex coordinates, three per vertex.
func (e *Engine) Vertices() ([]float64, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), r.mesh.Vertices...), nil
}

// Faces returns the triangle indices, three per face.
func (e *Engine) Faces() ([]int, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return append([]int(nil), r.mesh.Faces...), nil
}

// FaceSources returns the source tag of every face (see kernel.EdgeSource
// and kernel.VertexSource).
func (e *Engine) FaceSources() ([]int, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return append([]int(nil), r.mesh.FaceSources...), nil
}

// PeriodicPairs returns the matched wall faces, ordered by Low.
func (e *Engine) PeriodicPairs() ([]FacePair, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return append([]FacePair(nil), r.pairs...), nil
}

// Pieces returns the tubes and junctions of the last run as one solid, in
// network coordinates and without periodic images.
func (e *Engine) Pieces() (kernel.Union, error) {
	r, err := e.get()
	if err != nil {
		return nil, err
	}
	return append(kernel.Union(nil), r.pieces...), nil
}
