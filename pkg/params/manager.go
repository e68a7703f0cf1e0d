package params

import (
	"math"
	"os"
	"regexp"

	"github.com/chazu/wirelattice/pkg/wire"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Manager turns orbit and modifier settings into thickness and offset
// fields for one network. It holds no mutable state after construction and
// may be evaluated concurrently.
type Manager struct {
	net  *wire.Network
	base float64

	vertexOrbits [][]int
	edgeOrbits   [][]int

	thicknessType wire.ThicknessType
	thickness     []compiledRule
	offset        []compiledOffset
}

type compiledRule struct {
	orbits []int
	op     string
	value  formula
}

type compiledOffset struct {
	orbits []int
	value  [3]formula
}

// CreateFromSettingFile reads an orbit file and a modifier file and binds
// them to net. An empty modifierFile means no modifiers.
func CreateFromSettingFile(net *wire.Network, baseThickness float64, orbitFile, modifierFile string) (*Manager, error) {
	orbitDoc, err := os.ReadFile(orbitFile)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "read orbit file: %v", err)
	}
	var modifierDoc []byte
	if modifierFile != "" {
		if modifierDoc, err = os.ReadFile(modifierFile); err != nil {
			return nil, errors.Wrapf(ErrParse, "read modifier file: %v", err)
		}
	}
	return CreateFromSettings(net, baseThickness, orbitDoc, modifierDoc)
}

// CreateFromSettings binds in-memory orbit and modifier documents to net.
func CreateFromSettings(net *wire.Network, baseThickness float64, orbitDoc, modifierDoc []byte) (*Manager, error) {
	orbits, err := ParseOrbits(orbitDoc)
	if err != nil {
		return nil, err
	}
	mods, err := ParseModifiers(modifierDoc)
	if err != nil {
		return nil, err
	}
	return NewManager(net, baseThickness, orbits, mods)
}

// NewManager validates decoded settings against net and compiles every
// formula.
func NewManager(net *wire.Network, baseThickness float64, orbits *OrbitSettings, mods *ModifierSettings) (*Manager, error) {
	if net == nil {
		return nil, errors.Wrap(ErrValidation, "nil network")
	}
	if math.IsNaN(baseThickness) || math.IsInf(baseThickness, 0) || baseThickness < 0 {
		return nil, errors.Wrapf(ErrValidation, "base thickness %g", baseThickness)
	}
	if orbits == nil {
		orbits = &OrbitSettings{}
	}
	if mods == nil {
		mods = &ModifierSettings{}
	}
	if err := checkOrbits("vertex", orbits.VertexOrbits, net.NumVertices()); err != nil {
		return nil, err
	}
	if err := checkOrbits("edge", orbits.EdgeOrbits, net.NumEdges()); err != nil {
		return nil, err
	}

	m := &Manager{
		net:           net,
		base:          baseThickness,
		vertexOrbits:  copyOrbits(orbits.VertexOrbits),
		edgeOrbits:    copyOrbits(orbits.EdgeOrbits),
		thicknessType: wire.PerEdge,
	}
	if err := m.compileThickness(mods.Thickness); err != nil {
		return nil, err
	}
	if err := m.compileOffset(mods.VertexOffset); err != nil {
		return nil, err
	}
	klog.V(2).Infof("params: %d vertex orbits, %d edge orbits, %d thickness rules (%s), %d offset rules",
		len(m.vertexOrbits), len(m.edgeOrbits), len(m.thickness), m.thicknessType, len(m.offset))
	return m, nil
}

func checkOrbits(kind string, orbits [][]int, n int) error {
	seen := make(map[int]int)
	for o, members := range orbits {
		if len(members) == 0 {
			return errors.Wrapf(ErrValidation, "%s orbit %d is empty", kind, o)
		}
		for _, i := range members {
			if i < 0 || i >= n {
				return errors.Wrapf(ErrValidation, "%s orbit %d: index %d out of range [0,%d)", kind, o, i, n)
			}
			if prev, ok := seen[i]; ok {
				return errors.Wrapf(ErrValidation, "%s %d is in orbits %d and %d", kind, i, prev, o)
			}
			seen[i] = o
		}
	}
	return nil
}

func copyOrbits(in [][]int) [][]int {
	out := make([][]int, len(in))
	for i, o := range in {
		out[i] = append([]int(nil), o...)
	}
	return out
}

func (m *Manager) compileThickness(s *ThicknessSettings) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case EdgeOrbit, "":
		m.thicknessType = wire.PerEdge
	case VertexOrbit:
		m.thicknessType = wire.PerVertex
	default:
		return errors.Wrapf(ErrValidation, "thickness: unknown type %q", s.Type)
	}
	numOrbits := len(m.orbitsFor(m.thicknessType))

	rules := s.Rules
	if len(s.EffectiveOrbits) != len(s.ThicknessValues) {
		return errors.Wrapf(ErrValidation, "thickness: %d effective orbits but %d values",
			len(s.EffectiveOrbits), len(s.ThicknessValues))
	}
	for i, o := range s.EffectiveOrbits {
		rules = append(rules, ThicknessRule{Orbits: []int{o}, Op: OpSet, Value: s.ThicknessValues[i]})
	}

	for i, r := range rules {
		if err := checkRuleOrbits(r.Orbits, numOrbits); err != nil {
			return errors.Wrapf(err, "thickness rule %d", i)
		}
		op := r.Op
		switch op {
		case "":
			op = OpSet
		case OpSet, OpAdd, OpScale:
		default:
			return errors.Wrapf(ErrValidation, "thickness rule %d: unknown op %q", i, r.Op)
		}
		f, err := compile(r.Value)
		if err != nil {
			return errors.Wrapf(err, "thickness rule %d", i)
		}
		m.thickness = append(m.thickness, compiledRule{orbits: r.Orbits, op: op, value: f})
	}
	return nil
}

func (m *Manager) compileOffset(s *OffsetSettings) error {
	if s == nil {
		return nil
	}
	if s.Type != "" && s.Type != VertexOrbit {
		return errors.Wrapf(ErrValidation, "vertex_offset: type must be %q, got %q", VertexOrbit, s.Type)
	}
	rules := s.Rules
	if len(s.EffectiveOrbits) != len(s.OffsetPercentages) {
		return errors.Wrapf(ErrValidation, "vertex_offset: %d effective orbits but %d offsets",
			len(s.EffectiveOrbits), len(s.OffsetPercentages))
	}
	for i, o := range s.EffectiveOrbits {
		rules = append(rules, OffsetRule{Orbits: []int{o}, Value: s.OffsetPercentages[i]})
	}

	for i, r := range rules {
		if err := checkRuleOrbits(r.Orbits, len(m.vertexOrbits)); err != nil {
			return errors.Wrapf(err, "offset rule %d", i)
		}
		if len(r.Value) != 3 {
			return errors.Wrapf(ErrValidation, "offset rule %d: want 3 components, got %d", i, len(r.Value))
		}
		c := compiledOffset{orbits: r.Orbits}
		for k, v := range r.Value {
			f, err := compile(v)
			if err != nil {
				return errors.Wrapf(err, "offset rule %d", i)
			}
			c.value[k] = f
		}
		m.offset = append(m.offset, c)
	}
	return nil
}

func checkRuleOrbits(orbits []int, n int) error {
	if len(orbits) == 0 {
		return errors.Wrap(ErrValidation, "no orbits")
	}
	for _, o := range orbits {
		if o < 0 || o >= n {
			return errors.Wrapf(ErrValidation, "orbit %d out of range [0,%d)", o, n)
		}
	}
	return nil
}

func (m *Manager) orbitsFor(t wire.ThicknessType) [][]int {
	if t == wire.PerVertex {
		return m.vertexOrbits
	}
	return m.edgeOrbits
}

// ThicknessType returns whether thickness values are per edge or per vertex.
func (m *Manager) ThicknessType() wire.ThicknessType {
	return m.thicknessType
}

// BaseThickness returns the value of elements no rule touches.
func (m *Manager) BaseThickness() float64 {
	return m.base
}

// VertexOrbits returns a copy of the vertex orbits.
func (m *Manager) VertexOrbits() [][]int {
	return copyOrbits(m.vertexOrbits)
}

// EdgeOrbits returns a copy of the edge orbits.
func (m *Manager) EdgeOrbits() [][]int {
	return copyOrbits(m.edgeOrbits)
}

var varName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// bindings merges caller variables with base, rejecting reserved names.
func (m *Manager) bindings(vars map[string]float64) (map[string]float64, error) {
	env := make(map[string]float64, len(vars)+1)
	for k, v := range vars {
		switch k {
		case VarBase, VarIndex, VarOrbit:
			return nil, errors.Wrapf(ErrValidation, "variable %q is reserved", k)
		}
		if !varName.MatchString(k) {
			return nil, errors.Wrapf(ErrValidation, "invalid variable name %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrValidation, "variable %q is not finite", k)
		}
		env[k] = v
	}
	env[VarBase] = m.base
	return env, nil
}

func pointsOf(orbits [][]int, ids []int) []point {
	var pts []point
	for _, o := range ids {
		for _, i := range orbits[o] {
			pts = append(pts, point{index: i, orbit: o})
		}
	}
	return pts
}

// EvaluateThickness applies the thickness rules in order on top of the base
// thickness. The result has one value per edge or per vertex depending on
// ThicknessType.
func (m *Manager) EvaluateThickness(vars map[string]float64) (wire.ThicknessField, error) {
	env, err := m.bindings(vars)
	if err != nil {
		return wire.ThicknessField{}, err
	}
	n := m.net.NumEdges()
	if m.thicknessType == wire.PerVertex {
		n = m.net.NumVertices()
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = m.base
	}

	orbits := m.orbitsFor(m.thicknessType)
	for _, r := range m.thickness {
		pts := pointsOf(orbits, r.orbits)
		got, err := r.value.eval(env, pts)
		if err != nil {
			return wire.ThicknessField{}, err
		}
		for k, p := range pts {
			switch r.op {
			case OpSet:
				values[p.index] = got[k]
			case OpAdd:
				values[p.index] += got[k]
			case OpScale:
				values[p.index] *= got[k]
			}
		}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return wire.ThicknessField{}, errors.Wrapf(ErrValidation, "thickness %d is not finite", i)
		}
		if v < 0 {
			return wire.ThicknessField{}, errors.Wrapf(ErrValidation, "thickness %d is negative (%g)", i, v)
		}
	}
	return wire.ThicknessField{Type: m.thicknessType, Values: values}, nil
}

// EvaluateOffset returns one displacement per vertex. Rule values are
// fractions of the cell period on each axis; vertices no rule touches stay
// in place.
func (m *Manager) EvaluateOffset(vars map[string]float64) (wire.OffsetField, error) {
	env, err := m.bindings(vars)
	if err != nil {
		return nil, err
	}
	out := wire.ZeroOffset(m.net)
	period := m.net.Period()
	for _, r := range m.offset {
		pts := pointsOf(m.vertexOrbits, r.orbits)
		var comps [3][]float64
		for k := range comps {
			if comps[k], err = r.value[k].eval(env, pts); err != nil {
				return nil, err
			}
		}
		for j, p := range pts {
			out[p.index] = v3.Vec{
				X: comps[0][j] * period.X,
				Y: comps[1][j] * period.Y,
				Z: comps[2][j] * period.Z,
			}
		}
	}
	for i, d := range out {
		if math.IsNaN(d.X+d.Y+d.Z) || math.IsInf(d.X+d.Y+d.Z, 0) {
			return nil, errors.Wrapf(ErrValidation, "offset %d is not finite", i)
		}
	}
	return out, nil
}
