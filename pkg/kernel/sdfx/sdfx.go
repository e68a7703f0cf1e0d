// Package sdfx bridges kernel solids and the github.com/deadsy/sdfx SDF
// library. Kernel solids are meshed with the sdfx marching cubes renderer
// for previews.
package sdfx

import (
	"math"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface checks. Every sdf.SDF3 is a kernel.Solid and the
// reverse holds as well.
var (
	_ kernel.Solid = sdf.SDF3(nil)
	_ sdf.SDF3     = kernel.Solid(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 64

// ToMesh converts a solid to a welded triangle mesh using marching cubes.
// When the solid is a kernel.Union of kernel.Tagged members, each face is
// tagged with the source of the member nearest its centroid; otherwise all
// sources are 0.
func ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, errors.New("sdfx: marching cubes produced no triangles")
	}

	bb := s.BoundingBox()
	quantum := bb.Max.Sub(bb.Min).Length() / float64(cells) * 1e-4
	if quantum == 0 {
		quantum = 1e-9
	}
	type key [3]int64
	index := make(map[key]int)
	mesh := &kernel.Mesh{FaceSize: 3}
	weld := func(p v3.Vec) int {
		k := key{
			int64(math.Round(p.X / quantum)),
			int64(math.Round(p.Y / quantum)),
			int64(math.Round(p.Z / quantum)),
		}
		if i, ok := index[k]; ok {
			return i
		}
		i := len(mesh.Vertices) / 3
		index[k] = i
		mesh.Vertices = append(mesh.Vertices, p.X, p.Y, p.Z)
		return i
	}

	u, _ := s.(kernel.Union)
	for _, tri := range triangles {
		var f [3]int
		for j := 0; j < 3; j++ {
			f[j] = weld(tri[j])
		}
		// Marching cubes emits slivers that collapse on welding.
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		mesh.Faces = append(mesh.Faces, f[0], f[1], f[2])
		mesh.FaceSources = append(mesh.FaceSources, sourceAt(u, tri[0].Add(tri[1]).Add(tri[2]).MulScalar(1.0/3)))
	}
	if mesh.IsEmpty() {
		return nil, errors.New("sdfx: all triangles were degenerate")
	}
	return mesh, nil
}

func sourceAt(u kernel.Union, p v3.Vec) int {
	i, _ := u.Nearest(p)
	if i < 0 {
		return 0
	}
	if t, ok := u[i].(kernel.Tagged); ok {
		return t.Source()
	}
	return 0
}
