// Package config loads the run configuration of the inflate command.
//
// A config file names the wire network and optional parameter files, and
// sets the inflation knobs. Every field has a default, so an empty file is
// a valid configuration once Wire is supplied.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/chazu/wirelattice/pkg/inflate"
)

// ErrInvalid indicates a configuration that cannot drive a run.
var ErrInvalid = errors.New("config: invalid")

// Defaults.
const (
	DefaultThickness = 0.5
	DefaultOutput    = "out.obj"
)

// Config is one inflation run.
type Config struct {
	// Wire is the .wire network file.
	Wire string `yaml:"wire"`
	// Orbit and Modifier are the parameter documents. Both are optional;
	// without Orbit the base thickness is applied to every edge.
	Orbit    string `yaml:"orbit,omitempty"`
	Modifier string `yaml:"modifier,omitempty"`

	// CellSize fits the network into [-CellSize/2, CellSize/2]^3. Zero
	// keeps the network's own bounding box as the cell.
	CellSize float64 `yaml:"cell_size,omitempty"`

	Thickness      float64 `yaml:"thickness"`
	ProfileSamples int     `yaml:"profile_samples"`
	// Resolution is the grid cells per axis; zero picks one from the
	// thinnest wire.
	Resolution int `yaml:"resolution,omitempty"`
	// Tolerance is absolute; zero selects a value relative to the cell.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Refinement RefinementConfig `yaml:"refinement,omitempty"`

	// Vars are bound as free variables in modifier formulas.
	Vars map[string]float64 `yaml:"vars,omitempty"`

	// Output is the mesh file; the extension selects OBJ or STL.
	Output string `yaml:"output"`
	// Preview, when set, receives an sdfx marching cubes STL of the raw
	// pieces.
	Preview string `yaml:"preview,omitempty"`
}

// RefinementConfig selects post-meshing subdivision.
type RefinementConfig struct {
	Scheme     string `yaml:"scheme,omitempty"`
	Iterations int    `yaml:"iterations,omitempty"`
}

// DefaultConfig returns a configuration with every default filled in and
// no input file.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFromPath reads a YAML config. Relative file names inside it are
// resolved against the config's directory.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	c.resolve(filepath.Dir(path))
	return c, nil
}

// Parse decodes a YAML config and applies defaults. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(ErrInvalid, "parse: %v", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Thickness == 0 {
		c.Thickness = DefaultThickness
	}
	if c.ProfileSamples == 0 {
		c.ProfileSamples = inflate.DefaultProfileSamples
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Refinement.Scheme != "" && c.Refinement.Iterations == 0 {
		c.Refinement.Iterations = 1
	}
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Wire, &c.Orbit, &c.Modifier, &c.Output, &c.Preview} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks the configuration can drive a run.
func (c *Config) Validate() error {
	switch {
	case c.Wire == "":
		return errors.Wrap(ErrInvalid, "wire file is required")
	case c.Modifier != "" && c.Orbit == "":
		return errors.Wrap(ErrInvalid, "modifier file needs an orbit file")
	case c.CellSize < 0:
		return errors.Wrapf(ErrInvalid, "cell_size %g is negative", c.CellSize)
	case c.Thickness < 0:
		return errors.Wrapf(ErrInvalid, "thickness %g is negative", c.Thickness)
	case c.ProfileSamples < 3:
		return errors.Wrapf(ErrInvalid, "profile_samples %d, need at least 3", c.ProfileSamples)
	case c.Resolution < 0:
		return errors.Wrapf(ErrInvalid, "resolution %d is negative", c.Resolution)
	case c.Tolerance < 0:
		return errors.Wrapf(ErrInvalid, "tolerance %g is negative", c.Tolerance)
	case c.Refinement.Iterations < 0:
		return errors.Wrapf(ErrInvalid, "refinement iterations %d is negative", c.Refinement.Iterations)
	}
	switch c.Refinement.Scheme {
	case "", inflate.SchemeLoop, inflate.SchemeSimple:
	default:
		return errors.Wrapf(ErrInvalid, "unknown refinement scheme %q", c.Refinement.Scheme)
	}
	switch strings.ToLower(filepath.Ext(c.Output)) {
	case ".obj", ".stl":
	default:
		return errors.Wrapf(ErrInvalid, "output %q must end in .obj or .stl", c.Output)
	}
	return nil
}
