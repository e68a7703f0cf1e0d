package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a dense polygon mesh with per-face provenance.
// Vertices holds 3 floats per vertex (x,y,z), Faces holds FaceSize indices
// per face, and FaceSources holds one tag per face.
type Mesh struct {
	Vertices    []float64 `json:"vertices"`    // [x0,y0,z0, x1,y1,z1, ...]
	Faces       []int     `json:"faces"`       // [i0,i1,i2, ...] FaceSize per face
	FaceSize    int       `json:"faceSize"`    // 3 for triangles, 4 for quads
	FaceSources []int     `json:"faceSources"` // edge id >= 0, or VertexSource(v) < 0
}

// EdgeSource returns the face source tag for network edge e.
func EdgeSource(e int) int {
	return e
}

// VertexSource returns the face source tag for the junction at vertex v.
func VertexSource(v int) int {
	return -(v + 1)
}

// DecodeSource splits a face source tag into its element index and whether
// it names a vertex junction.
func DecodeSource(tag int) (index int, isVertex bool) {
	if tag < 0 {
		return -tag - 1, true
	}
	return tag, false
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	if m.FaceSize == 0 {
		return 0
	}
	return len(m.Faces) / m.FaceSize
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Faces) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Face returns the vertex indices of face i. The slice aliases the mesh.
func (m *Mesh) Face(i int) []int {
	return m.Faces[i*m.FaceSize : (i+1)*m.FaceSize]
}

// Centroid returns the average of the vertices of face i.
func (m *Mesh) Centroid(i int) v3.Vec {
	var c v3.Vec
	f := m.Face(i)
	for _, v := range f {
		c = c.Add(m.Vertex(v))
	}
	return c.MulScalar(1 / float64(len(f)))
}

// Volume returns the signed volume enclosed by a closed mesh, positive when
// faces wind counter-clockwise seen from outside. Quads are split along
// their first diagonal.
func (m *Mesh) Volume() float64 {
	v := 0.0
	m.eachTriangle(func(a, b, c v3.Vec) {
		v += a.Dot(b.Cross(c))
	})
	return v / 6
}

// SurfaceArea returns the total face area.
func (m *Mesh) SurfaceArea() float64 {
	area := 0.0
	m.eachTriangle(func(a, b, c v3.Vec) {
		area += b.Sub(a).Cross(c.Sub(a)).Length() / 2
	})
	return area
}

func (m *Mesh) eachTriangle(fn func(a, b, c v3.Vec)) {
	for i := 0; i < m.FaceCount(); i++ {
		f := m.Face(i)
		for j := 1; j+1 < len(f); j++ {
			fn(m.Vertex(f[0]), m.Vertex(f[j]), m.Vertex(f[j+1]))
		}
	}
}

// SourceField returns the face sources as a per-face scalar field for mesh
// writers.
func (m *Mesh) SourceField() []float64 {
	out := make([]float64, len(m.FaceSources))
	for i, s := range m.FaceSources {
		out[i] = float64(s)
	}
	return out
}

// Check verifies the dense arrays are consistent: whole rows, indices in
// range and one source per face.
func (m *Mesh) Check() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh: vertex array length %d is not a multiple of 3", len(m.Vertices))
	}
	if m.FaceSize != 3 && m.FaceSize != 4 {
		return fmt.Errorf("mesh: face size %d, want 3 or 4", m.FaceSize)
	}
	if len(m.Faces)%m.FaceSize != 0 {
		return fmt.Errorf("mesh: face array length %d is not a multiple of %d", len(m.Faces), m.FaceSize)
	}
	nv := m.VertexCount()
	for i, v := range m.Faces {
		if v < 0 || v >= nv {
			return fmt.Errorf("mesh: face %d references vertex %d, have %d", i/m.FaceSize, v, nv)
		}
	}
	if len(m.FaceSources) != m.FaceCount() {
		return fmt.Errorf("mesh: %d face sources for %d faces", len(m.FaceSources), m.FaceCount())
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices:    append([]float64(nil), m.Vertices...),
		Faces:       append([]int(nil), m.Faces...),
		FaceSize:    m.FaceSize,
		FaceSources: append([]int(nil), m.FaceSources...),
	}
}
