package kernel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteOBJ writes the mesh as Wavefront OBJ. Face sources are emitted as
// one "# source" comment per face so the file stays readable by any OBJ
// loader.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	if err := m.Check(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", m.VertexCount(), m.FaceCount())
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Vertex(i)
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for i := 0; i < m.FaceCount(); i++ {
		fmt.Fprintf(bw, "# source %d\nf", m.FaceSources[i])
		for _, v := range m.Face(i) {
			fmt.Fprintf(bw, " %d", v+1)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteSTL writes the mesh as binary STL. Quads are split into two
// triangles. The 16-bit attribute of each triangle carries the low bits of
// its face source.
func (m *Mesh) WriteSTL(w io.Writer) error {
	if err := m.Check(); err != nil {
		return err
	}
	type triangle struct {
		a, b, c int
		source  int
	}
	var tris []triangle
	for i := 0; i < m.FaceCount(); i++ {
		f := m.Face(i)
		for j := 1; j+1 < len(f); j++ {
			tris = append(tris, triangle{f[0], f[j], f[j+1], m.FaceSources[i]})
		}
	}
	if uint64(len(tris)) > math.MaxUint32 {
		return fmt.Errorf("mesh: %d triangles do not fit in an STL file", len(tris))
	}

	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "wirelattice")
	bw.Write(header[:])
	binary.Write(bw, binary.LittleEndian, uint32(len(tris)))

	buf := make([]byte, 50)
	put := func(off int, x float64) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(x)))
	}
	for _, t := range tris {
		a, b, c := m.Vertex(t.a), m.Vertex(t.b), m.Vertex(t.c)
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		for k, p := range [4][3]float64{
			{n.X, n.Y, n.Z}, {a.X, a.Y, a.Z}, {b.X, b.Y, b.Z}, {c.X, c.Y, c.Z},
		} {
			put(12*k, p[0])
			put(12*k+4, p[1])
			put(12*k+8, p[2])
		}
		binary.LittleEndian.PutUint16(buf[48:], uint16(t.source))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
