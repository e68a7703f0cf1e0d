package kernel

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ball is a unit-radius sphere used to exercise the combinators.
type ball struct {
	c v3.Vec
	r float64
}

func (b ball) Evaluate(p v3.Vec) float64 { return p.Sub(b.c).Length() - b.r }

func (b ball) BoundingBox() sdf.Box3 {
	d := v3.Vec{X: b.r, Y: b.r, Z: b.r}
	return sdf.Box3{Min: b.c.Sub(d), Max: b.c.Add(d)}
}

func TestUnionEvaluate(t *testing.T) {
	u := Union{ball{v3.Vec{}, 1}, ball{v3.Vec{X: 3}, 1}}
	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"centre of first", v3.Vec{}, -1},
		{"centre of second", v3.Vec{X: 3}, -1},
		{"midpoint", v3.Vec{X: 1.5}, 0.5},
		{"far", v3.Vec{Y: 10}, math.Sqrt(100) - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := u.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Evaluate(%v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestUnionEmpty(t *testing.T) {
	var u Union
	if got := u.Evaluate(v3.Vec{}); !math.IsInf(got, 1) {
		t.Errorf("empty union = %g, want +Inf", got)
	}
	if i, _ := u.Nearest(v3.Vec{}); i != -1 {
		t.Errorf("Nearest on empty union = %d, want -1", i)
	}
}

func TestUnionBoundingBox(t *testing.T) {
	u := Union{ball{v3.Vec{}, 1}, ball{v3.Vec{X: 3, Z: -2}, 0.5}}
	bb := u.BoundingBox()
	want := sdf.Box3{Min: v3.Vec{X: -1, Y: -1, Z: -2.5}, Max: v3.Vec{X: 3.5, Y: 1, Z: 1}}
	if bb != want {
		t.Errorf("BoundingBox() = %v, want %v", bb, want)
	}
}

func TestUnionNearest(t *testing.T) {
	u := Union{ball{v3.Vec{}, 1}, ball{v3.Vec{X: 3}, 1}}
	if i, d := u.Nearest(v3.Vec{X: 2.5}); i != 1 || math.Abs(d+0.5) > 1e-12 {
		t.Errorf("Nearest = (%d, %g), want (1, -0.5)", i, d)
	}
}

func TestTranslated(t *testing.T) {
	s := Translated{Solid: ball{v3.Vec{}, 1}, Offset: v3.Vec{X: 2}}
	if got := s.Evaluate(v3.Vec{X: 2}); got != -1 {
		t.Errorf("Evaluate at moved centre = %g, want -1", got)
	}
	bb := s.BoundingBox()
	if bb.Min.X != 1 || bb.Max.X != 3 {
		t.Errorf("BoundingBox X = [%g,%g], want [1,3]", bb.Min.X, bb.Max.X)
	}
}

func TestClipped(t *testing.T) {
	box := sdf.Box3{Min: v3.Vec{X: -1, Y: -1, Z: -1}, Max: v3.Vec{X: 0, Y: 1, Z: 1}}
	s := Clipped{Solid: ball{v3.Vec{}, 1}, Box: box}
	if got := s.Evaluate(v3.Vec{X: -0.5}); got >= 0 {
		t.Errorf("inside clip = %g, want negative", got)
	}
	if got := s.Evaluate(v3.Vec{X: 0.5}); got <= 0 {
		t.Errorf("outside clip = %g, want positive", got)
	}
	if bb := s.BoundingBox(); bb.Max.X != 0 {
		t.Errorf("clipped Max.X = %g, want 0", bb.Max.X)
	}
}

// taggedBall is a ball carrying a source tag.
type taggedBall struct {
	ball
	tag int
}

func (b taggedBall) Source() int { return b.tag }

func TestWrappersKeepTags(t *testing.T) {
	b := taggedBall{ball{v3.Vec{}, 1}, VertexSource(4)}
	var s Solid = Clipped{Solid: Translated{Solid: b, Offset: v3.Vec{X: 1}}, Box: sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}}
	tagged, ok := s.(Tagged)
	if !ok {
		t.Fatal("Clipped is not Tagged")
	}
	if got := tagged.Source(); got != VertexSource(4) {
		t.Errorf("Source() = %d, want %d", got, VertexSource(4))
	}
	if got := (Translated{Solid: ball{v3.Vec{}, 1}}).Source(); got != 0 {
		t.Errorf("untagged Source() = %d, want 0", got)
	}
}

func TestTile(t *testing.T) {
	cell := sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	// A ball on the origin corner shows up at all eight corners; one in the
	// middle only once.
	u := Union{
		taggedBall{ball{v3.Vec{}, 0.2}, 1},
		taggedBall{ball{v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 0.2}, 2},
	}
	tiled := Tile(u, cell)
	if len(tiled) != 9 {
		t.Fatalf("Tile gave %d members, want 9", len(tiled))
	}
	far := v3.Vec{X: 0.95, Y: 0.95, Z: 0.95}
	i, d := tiled.Nearest(far)
	if d >= 0 {
		t.Errorf("far corner value = %g, want inside the corner image", d)
	}
	if src := tiled[i].(Tagged).Source(); src != 1 {
		t.Errorf("far corner source = %d, want 1", src)
	}
	if got := tiled.Evaluate(v3.Vec{X: -0.05, Y: 0.05, Z: 0.05}); got <= 0 {
		t.Errorf("value outside the cell = %g, want positive", got)
	}
	bb := tiled.BoundingBox()
	if bb.Min != cell.Min || bb.Max != cell.Max {
		t.Errorf("BoundingBox() = %v, want the cell", bb)
	}
}

// --- Mesh helper method tests ---

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		mesh      Mesh
		wantVerts int
		wantFaces int
	}{
		{"empty", Mesh{}, 0, 0},
		{"one triangle", Mesh{Vertices: make([]float64, 9), Faces: []int{0, 1, 2}, FaceSize: 3}, 3, 1},
		{"two quads", Mesh{Vertices: make([]float64, 18), Faces: []int{0, 1, 2, 3, 2, 3, 4, 5}, FaceSize: 4}, 6, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
			if got := tt.mesh.FaceCount(); got != tt.wantFaces {
				t.Errorf("FaceCount() = %d, want %d", got, tt.wantFaces)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("vertices only", func(t *testing.T) {
		m := &Mesh{Vertices: []float64{1, 2, 3}}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for mesh without faces, want true")
		}
	})
}

func TestMeshAccessors(t *testing.T) {
	m := &Mesh{
		Vertices:    []float64{0, 0, 0, 3, 0, 0, 0, 3, 0},
		Faces:       []int{0, 1, 2},
		FaceSize:    3,
		FaceSources: []int{VertexSource(4)},
	}
	if got := m.Vertex(1); got != (v3.Vec{X: 3}) {
		t.Errorf("Vertex(1) = %v", got)
	}
	if got := m.Centroid(0); got != (v3.Vec{X: 1, Y: 1}) {
		t.Errorf("Centroid(0) = %v, want (1,1,0)", got)
	}
	if got := m.SourceField(); len(got) != 1 || got[0] != -5 {
		t.Errorf("SourceField() = %v, want [-5]", got)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() = %v", err)
	}
}

func TestMeshCheck(t *testing.T) {
	tests := []struct {
		name string
		mesh Mesh
	}{
		{"ragged vertices", Mesh{Vertices: make([]float64, 4), FaceSize: 3}},
		{"bad face size", Mesh{Vertices: make([]float64, 9), Faces: []int{0, 1}, FaceSize: 2}},
		{"index out of range", Mesh{Vertices: make([]float64, 9), Faces: []int{0, 1, 3}, FaceSize: 3, FaceSources: []int{0}}},
		{"missing sources", Mesh{Vertices: make([]float64, 9), Faces: []int{0, 1, 2}, FaceSize: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mesh.Check(); err == nil {
				t.Error("Check() = nil, want error")
			}
		})
	}
}

func TestSourceEncoding(t *testing.T) {
	tests := []struct {
		tag      int
		index    int
		isVertex bool
	}{
		{EdgeSource(0), 0, false},
		{EdgeSource(7), 7, false},
		{VertexSource(0), 0, true},
		{VertexSource(12), 12, true},
	}
	for _, tt := range tests {
		idx, isV := DecodeSource(tt.tag)
		if idx != tt.index || isV != tt.isVertex {
			t.Errorf("DecodeSource(%d) = (%d, %v), want (%d, %v)", tt.tag, idx, isV, tt.index, tt.isVertex)
		}
	}
}

func TestMeshClone(t *testing.T) {
	m := &Mesh{Vertices: []float64{1, 2, 3}, Faces: []int{0, 0, 0}, FaceSize: 3, FaceSources: []int{1}}
	c := m.Clone()
	c.Vertices[0] = 9
	c.FaceSources[0] = 2
	if m.Vertices[0] != 1 || m.FaceSources[0] != 1 {
		t.Error("Clone shares storage with the original")
	}
}
