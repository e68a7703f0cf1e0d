// Package kernel defines the implicit solid interface the inflation engine
// samples, and the dense mesh it emits. Solids are pure functions of
// position: negative inside, positive outside, zero on the surface.
package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an implicit solid with a finite bounding box.
type Solid interface {
	// Evaluate returns a signed value that is negative inside the solid.
	Evaluate(p v3.Vec) float64
	// BoundingBox returns a box containing every point where Evaluate < 0.
	BoundingBox() sdf.Box3
}

// Tagged is a solid that records which network element produced it.
type Tagged interface {
	Solid
	// Source returns the face source tag (see EdgeSource and VertexSource).
	Source() int
}

// Union is the union of a set of solids.
type Union []Solid

// Evaluate returns the minimum over all members.
func (u Union) Evaluate(p v3.Vec) float64 {
	d := math.Inf(1)
	for _, s := range u {
		d = math.Min(d, s.Evaluate(p))
	}
	return d
}

// BoundingBox returns the box enclosing every member.
func (u Union) BoundingBox() sdf.Box3 {
	if len(u) == 0 {
		return sdf.Box3{}
	}
	bb := u[0].BoundingBox()
	for _, s := range u[1:] {
		b := s.BoundingBox()
		bb = sdf.Box3{
			Min: v3.Vec{X: math.Min(bb.Min.X, b.Min.X), Y: math.Min(bb.Min.Y, b.Min.Y), Z: math.Min(bb.Min.Z, b.Min.Z)},
			Max: v3.Vec{X: math.Max(bb.Max.X, b.Max.X), Y: math.Max(bb.Max.Y, b.Max.Y), Z: math.Max(bb.Max.Z, b.Max.Z)},
		}
	}
	return bb
}

// sourceOf returns the tag of s, or 0 when s is not Tagged.
func sourceOf(s Solid) int {
	if t, ok := s.(Tagged); ok {
		return t.Source()
	}
	return 0
}

// Translated is a solid moved by Offset.
type Translated struct {
	Solid  Solid
	Offset v3.Vec
}

// Source returns the tag of the wrapped solid.
func (t Translated) Source() int { return sourceOf(t.Solid) }

// Evaluate samples the wrapped solid at p - Offset.
func (t Translated) Evaluate(p v3.Vec) float64 {
	return t.Solid.Evaluate(p.Sub(t.Offset))
}

// BoundingBox returns the wrapped box moved by Offset.
func (t Translated) BoundingBox() sdf.Box3 {
	bb := t.Solid.BoundingBox()
	return sdf.Box3{Min: bb.Min.Add(t.Offset), Max: bb.Max.Add(t.Offset)}
}

// Clipped is the intersection of a solid with an axis-aligned box.
type Clipped struct {
	Solid Solid
	Box   sdf.Box3
}

// Source returns the tag of the wrapped solid.
func (c Clipped) Source() int { return sourceOf(c.Solid) }

// Evaluate returns the larger of the solid value and the box value.
func (c Clipped) Evaluate(p v3.Vec) float64 {
	lo := c.Box.Min.Sub(p)
	hi := p.Sub(c.Box.Max)
	box := math.Max(math.Max(math.Max(lo.X, hi.X), math.Max(lo.Y, hi.Y)), math.Max(lo.Z, hi.Z))
	return math.Max(c.Solid.Evaluate(p), box)
}

// BoundingBox returns the clip box intersected with the solid's box.
func (c Clipped) BoundingBox() sdf.Box3 {
	bb := c.Solid.BoundingBox()
	return sdf.Box3{
		Min: v3.Vec{X: math.Max(bb.Min.X, c.Box.Min.X), Y: math.Max(bb.Min.Y, c.Box.Min.Y), Z: math.Max(bb.Min.Z, c.Box.Min.Z)},
		Max: v3.Vec{X: math.Min(bb.Max.X, c.Box.Max.X), Y: math.Min(bb.Max.Y, c.Box.Max.Y), Z: math.Min(bb.Max.Z, c.Box.Max.Z)},
	}
}

// Nearest returns the index of the member with the smallest value at p and
// that value. It returns -1 for an empty union.
func (u Union) Nearest(p v3.Vec) (int, float64) {
	best, d := -1, math.Inf(1)
	for i, s := range u {
		if v := s.Evaluate(p); v < d {
			best, d = i, v
		}
	}
	return best, d
}

// Tile returns the members of u and their images one period away in every
// direction, each clipped to cell. Images that miss the cell are left out.
// The result is the periodic solid seen through one cell, with every member
// keeping its tag.
func Tile(u Union, cell sdf.Box3) Union {
	period := cell.Max.Sub(cell.Min)
	var out Union
	for _, s := range u {
		bb := s.BoundingBox()
		for i := -1; i <= 1; i++ {
			for j := -1; j <= 1; j++ {
				for k := -1; k <= 1; k++ {
					off := v3.Vec{X: float64(i) * period.X, Y: float64(j) * period.Y, Z: float64(k) * period.Z}
					if !overlaps(sdf.Box3{Min: bb.Min.Add(off), Max: bb.Max.Add(off)}, cell) {
						continue
					}
					out = append(out, Clipped{Solid: Translated{Solid: s, Offset: off}, Box: cell})
				}
			}
		}
	}
	return out
}

func overlaps(a, b sdf.Box3) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y &&
		a.Min.Z < b.Max.Z && b.Min.Z < a.Max.Z
}
