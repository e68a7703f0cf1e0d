package params

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Orbit type names used by modifier documents.
const (
	VertexOrbit = "vertex_orbit"
	EdgeOrbit   = "edge_orbit"
)

// Rule operations.
const (
	OpSet   = "set"
	OpAdd   = "add"
	OpScale = "scale"
)

// OrbitSettings is the orbit document.
type OrbitSettings struct {
	VertexOrbits [][]int `yaml:"vertex_orbits"`
	EdgeOrbits   [][]int `yaml:"edge_orbits"`
}

// ModifierSettings is the modifier document. Both sections are optional.
type ModifierSettings struct {
	Thickness    *ThicknessSettings `yaml:"thickness"`
	VertexOffset *OffsetSettings    `yaml:"vertex_offset"`
}

// ThicknessSettings describes thickness rules. EffectiveOrbits and
// ThicknessValues are the older paired-list form; each pair is a set rule.
type ThicknessSettings struct {
	Type            string          `yaml:"type"`
	Rules           []ThicknessRule `yaml:"rules"`
	EffectiveOrbits []int           `yaml:"effective_orbits"`
	ThicknessValues []Value         `yaml:"thickness_values"`
}

// ThicknessRule applies Op with Value to every element of the listed orbits.
type ThicknessRule struct {
	Orbits []int  `yaml:"orbits"`
	Op     string `yaml:"op"`
	Value  Value  `yaml:"value"`
}

// OffsetSettings describes vertex offsets as fractions of the cell size.
type OffsetSettings struct {
	Type              string       `yaml:"type"`
	Rules             []OffsetRule `yaml:"rules"`
	EffectiveOrbits   []int        `yaml:"effective_orbits"`
	OffsetPercentages [][]Value    `yaml:"offset_percentages"`
}

// OffsetRule sets the offset of every vertex of the listed orbits.
type OffsetRule struct {
	Orbits []int   `yaml:"orbits"`
	Value  []Value `yaml:"value"`
}

// Value is a number or a formula.
type Value struct {
	Number  float64
	Formula string
}

// Num returns a constant value.
func Num(v float64) Value { return Value{Number: v} }

// Expr returns a formula value.
func Expr(src string) Value { return Value{Formula: src} }

// IsFormula reports whether v holds a formula.
func (v Value) IsFormula() bool { return v.Formula != "" }

func (v Value) String() string {
	if v.IsFormula() {
		return v.Formula
	}
	return formatFloat(v.Number)
}

// UnmarshalYAML accepts numeric scalars as numbers and strings as formulas.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: value must be a number or formula string", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		return node.Decode(&v.Number)
	case "!!str":
		f := strings.TrimSpace(node.Value)
		if f == "" {
			return errors.Errorf("line %d: empty formula", node.Line)
		}
		v.Formula = f
		return nil
	}
	return errors.Errorf("line %d: unsupported value %q", node.Line, node.Value)
}

// MarshalYAML writes numbers as numbers and formulas as strings.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.IsFormula() {
		return v.Formula, nil
	}
	return v.Number, nil
}

// ParseOrbits decodes an orbit document. An empty document has no orbits.
func ParseOrbits(doc []byte) (*OrbitSettings, error) {
	var s OrbitSettings
	if err := decode(doc, &s); err != nil {
		return nil, errors.Wrapf(ErrParse, "orbit document: %v", err)
	}
	return &s, nil
}

// ParseModifiers decodes a modifier document. An empty document has no rules.
func ParseModifiers(doc []byte) (*ModifierSettings, error) {
	var s ModifierSettings
	if err := decode(doc, &s); err != nil {
		return nil, errors.Wrapf(ErrParse, "modifier document: %v", err)
	}
	return &s, nil
}

func decode(doc []byte, out interface{}) error {
	if strings.TrimSpace(string(doc)) == "" {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(doc)))
	dec.KnownFields(true)
	return dec.Decode(out)
}
