// Package inflate turns a periodic wire network into a closed triangle mesh.
//
// Every edge is swept into a tube by a cross-section profile and every
// lattice node gets a convex junction piece spanning the rings of its
// incident tubes. The union of all pieces, repeated over the periodic
// lattice, is sampled on a grid that wraps around the cell and its zero
// level set is extracted with marching tetrahedra. Where the solid meets a
// cell wall the wall is capped from the same samples, so opposite walls carry
// identical faces and the mesh tiles without gaps.
//
// Usage:
//
//	eng := inflate.New(net)
//	eng.SetThicknessType(wire.PerEdge)
//	eng.SetThickness(radii)
//	if err := eng.Inflate(); err != nil {
//		return err
//	}
//	mesh, _ := eng.Mesh()
package inflate
