// Command inflate turns a periodic wire network into a closed, periodic
// triangle mesh.
//
//	inflate -config run.yaml
//	inflate -wire cube.wire -cell 5 -thickness 0.4 -out cube.obj
//
// Flags override the config file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plan-systems/klog"

	"github.com/chazu/wirelattice/pkg/config"
)

func main() {
	fset := flag.NewFlagSet("inflate", flag.ExitOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	var (
		configPath = fset.String("config", "", "YAML run configuration")
		wirePath   = fset.String("wire", "", "wire network file")
		orbit      = fset.String("orbit", "", "orbit settings file")
		modifier   = fset.String("modifier", "", "modifier settings file")
		out        = fset.String("out", "", "output mesh (.obj or .stl)")
		preview    = fset.String("preview", "", "write an sdfx preview STL of the raw pieces")
		cell       = fset.Float64("cell", -1, "fit the network into a cube of this size")
		thickness  = fset.Float64("thickness", -1, "base wire radius")
		samples    = fset.Int("samples", 0, "isotropic profile samples")
		resolution = fset.Int("resolution", -1, "grid cells per axis, 0 for automatic")
		scheme     = fset.String("refine", "", "refinement scheme: loop or simple")
		iterations = fset.Int("iterations", -1, "refinement iterations")
	)
	fset.Parse(os.Args[1:])

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFromPath(*configPath); err != nil {
			fail(err)
		}
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Wire, *wirePath)
	set(&cfg.Orbit, *orbit)
	set(&cfg.Modifier, *modifier)
	set(&cfg.Output, *out)
	set(&cfg.Preview, *preview)
	set(&cfg.Refinement.Scheme, *scheme)
	if *cell >= 0 {
		cfg.CellSize = *cell
	}
	if *thickness >= 0 {
		cfg.Thickness = *thickness
	}
	if *samples > 0 {
		cfg.ProfileSamples = *samples
	}
	if *resolution >= 0 {
		cfg.Resolution = *resolution
	}
	if *iterations >= 0 {
		cfg.Refinement.Iterations = *iterations
	} else if *scheme != "" && cfg.Refinement.Iterations == 0 {
		cfg.Refinement.Iterations = 1
	}

	if err := run(cfg); err != nil {
		fail(err)
	}
	klog.Flush()
}

func fail(err error) {
	klog.Errorf("%v", err)
	klog.Flush()
	fmt.Fprintln(os.Stderr, "inflate:", err)
	os.Exit(1)
}
