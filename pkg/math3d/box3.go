package math3d

import "math"

// Box3 is an axis-aligned bounding box. An empty box has Min > Max.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns a box that contains nothing; expanding it by a point
// yields that point.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Box3FromPoints returns the smallest box containing pts.
func Box3FromPoints(pts ...Vec3) Box3 {
	b := EmptyBox3()
	for _, p := range pts {
		b = b.ExpandByPoint(p)
	}
	return b
}

// Box3FromCenterAndSize returns the box centered at c with the given size.
func Box3FromCenterAndSize(c, size Vec3) Box3 {
	half := size.Scale(0.5)
	return Box3{Min: c.Sub(half), Max: c.Add(half)}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint returns the box grown to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(o Box3) Box3 {
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the box midpoint.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns Max - Min.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// ContainsPoint reports whether p lies inside or on the box.
func (b Box3) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether the boxes overlap or touch.
func (b Box3) Intersects(o Box3) bool {
	return b.Max.X >= o.Min.X && b.Min.X <= o.Max.X &&
		b.Max.Y >= o.Min.Y && b.Min.Y <= o.Max.Y &&
		b.Max.Z >= o.Min.Z && b.Min.Z <= o.Max.Z
}

// ApplyMat4 returns the axis-aligned box enclosing all eight transformed
// corners.
func (b Box3) ApplyMat4(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox3()
	for i := range 8 {
		corner := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.ExpandByPoint(m.MulVec3(corner))
	}
	return out
}
