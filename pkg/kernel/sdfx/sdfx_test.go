package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/wirelattice/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type taggedBall struct {
	c   v3.Vec
	r   float64
	tag int
}

func (b taggedBall) Evaluate(p v3.Vec) float64 { return p.Sub(b.c).Length() - b.r }
func (b taggedBall) Source() int               { return b.tag }

func (b taggedBall) BoundingBox() sdf.Box3 {
	d := v3.Vec{X: b.r, Y: b.r, Z: b.r}
	return sdf.Box3{Min: b.c.Sub(d), Max: b.c.Add(d)}
}

func TestToMesh(t *testing.T) {
	u := kernel.Union{
		taggedBall{v3.Vec{X: -1}, 0.8, 3},
		taggedBall{v3.Vec{X: 1}, 0.8, kernel.VertexSource(2)},
	}
	mesh, err := ToMesh(u, 32)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.FaceCount() == 0 {
		t.Fatal("expected non-zero face count")
	}
	if err := mesh.Check(); err != nil {
		t.Fatalf("mesh inconsistent: %v", err)
	}
	seen := map[int]bool{}
	for _, s := range mesh.FaceSources {
		seen[s] = true
	}
	if !seen[3] || !seen[kernel.VertexSource(2)] || len(seen) != 2 {
		t.Errorf("face sources = %v, want {3, %d}", seen, kernel.VertexSource(2))
	}
}

func TestToMeshTiled(t *testing.T) {
	cell := sdf.Box3{Min: v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, Max: v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}}
	// A ball on a cell corner shows up as eighths at all eight corners.
	u := kernel.Union{taggedBall{v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, 0.3, kernel.VertexSource(1)}}
	mesh, err := ToMesh(kernel.Tile(u, cell), 24)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	corners := map[[3]bool]bool{}
	for f := 0; f < mesh.FaceCount(); f++ {
		if src := mesh.FaceSources[f]; src != kernel.VertexSource(1) {
			t.Fatalf("face %d source = %d, want %d", f, src, kernel.VertexSource(1))
		}
		c := mesh.Centroid(f)
		corners[[3]bool{c.X > 0, c.Y > 0, c.Z > 0}] = true
	}
	if len(corners) != 8 {
		t.Errorf("faces reach %d corners, want 8", len(corners))
	}
	for i := 0; i < mesh.VertexCount(); i++ {
		p := mesh.Vertex(i)
		if math.Abs(p.X) > 0.51 || math.Abs(p.Y) > 0.51 || math.Abs(p.Z) > 0.51 {
			t.Fatalf("vertex %v outside the cell", p)
		}
	}
}
