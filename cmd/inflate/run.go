package main

import (
	"os"
	"path/filepath"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/chazu/wirelattice/pkg/config"
	"github.com/chazu/wirelattice/pkg/inflate"
	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/chazu/wirelattice/pkg/kernel/sdfx"
	"github.com/chazu/wirelattice/pkg/meshcheck"
	"github.com/chazu/wirelattice/pkg/params"
	"github.com/chazu/wirelattice/pkg/profile"
	"github.com/chazu/wirelattice/pkg/wire"
)

// run executes one configured inflation and writes its outputs.
func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	net, err := wire.LoadFile(cfg.Wire)
	if err != nil {
		return err
	}
	if err := net.ComputeConnectivity(); err != nil {
		return err
	}
	if cfg.CellSize > 0 {
		h := cfg.CellSize / 2
		if err := net.ScaleFit(v3.Vec{X: -h, Y: -h, Z: -h}, v3.Vec{X: h, Y: h, Z: h}); err != nil {
			return err
		}
	}
	klog.Infof("loaded %s: %d vertices, %d edges, cell %v", cfg.Wire, net.NumVertices(), net.NumEdges(), net.Period())

	field, err := thicknessOf(cfg, net)
	if err != nil {
		return err
	}
	prof, err := profile.Isotropic(cfg.ProfileSamples)
	if err != nil {
		return err
	}

	e := inflate.New(net)
	e.SetProfile(prof)
	e.SetThicknessField(field)
	e.SetResolution(cfg.Resolution)
	e.SetTolerance(cfg.Tolerance)
	if cfg.Refinement.Scheme != "" {
		e.WithRefinement(cfg.Refinement.Scheme, cfg.Refinement.Iterations)
	}
	if err := e.Inflate(); err != nil {
		return err
	}
	m, err := e.Mesh()
	if err != nil {
		return err
	}
	if err := check(m, net, cfg.Tolerance); err != nil {
		return err
	}
	if err := writeMesh(m, cfg.Output); err != nil {
		return err
	}
	klog.Infof("wrote %s: %d vertices, %d faces, volume %.6g", cfg.Output, m.VertexCount(), m.FaceCount(), m.Volume())

	if cfg.Preview != "" {
		pieces, err := e.Pieces()
		if err != nil {
			return err
		}
		preview, err := sdfx.ToMesh(kernel.Tile(pieces, net.Cell()), sdfx.DefaultMeshCells)
		if err != nil {
			return errors.Wrap(err, "preview")
		}
		if err := writeMesh(preview, cfg.Preview); err != nil {
			return err
		}
		klog.Infof("wrote preview %s: %d faces", cfg.Preview, preview.FaceCount())
	}
	return nil
}

// thicknessOf evaluates the parameter files, moving the network by the
// offset field, or falls back to a uniform radius.
func thicknessOf(cfg *config.Config, net *wire.Network) (wire.ThicknessField, error) {
	if cfg.Orbit == "" {
		return wire.UniformThickness(net, cfg.Thickness), nil
	}
	mgr, err := params.CreateFromSettingFile(net, cfg.Thickness, cfg.Orbit, cfg.Modifier)
	if err != nil {
		return wire.ThicknessField{}, err
	}
	field, err := mgr.EvaluateThickness(cfg.Vars)
	if err != nil {
		return wire.ThicknessField{}, err
	}
	offset, err := mgr.EvaluateOffset(cfg.Vars)
	if err != nil {
		return wire.ThicknessField{}, err
	}
	if err := net.ApplyOffset(offset); err != nil {
		return wire.ThicknessField{}, err
	}
	return field, nil
}

// check runs the mesh validator. A failure here is a bug in the engine, so
// it is reported rather than written out.
func check(m *kernel.Mesh, net *wire.Network, tol float64) error {
	opts := []meshcheck.Option{meshcheck.WithCell(net.Cell())}
	if tol > 0 {
		opts = append(opts, meshcheck.WithTolerance(tol))
	}
	if err := meshcheck.CheckWaterTight(m); err != nil {
		return errors.Wrap(err, "mesh is not watertight")
	}
	if err := meshcheck.CheckManifold(m); err != nil {
		return errors.Wrap(err, "mesh is not manifold")
	}
	if err := meshcheck.CheckPeriodic(m, opts...); err != nil {
		return errors.Wrap(err, "mesh is not periodic")
	}
	if err := meshcheck.CheckFaceSources(m, net, 0, opts...); err != nil {
		return errors.Wrap(err, "bad face sources")
	}
	return nil
}

func writeMesh(m *kernel.Mesh, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		err = m.WriteSTL(f)
	} else {
		err = m.WriteOBJ(f)
	}
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func ensureDir(path string) error {
	return errors.Wrap(os.MkdirAll(filepath.Dir(path), 0o755), "create output directory")
}
