package render

import (
	"github.com/taigrr/speedr/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive is on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six clip planes of a view volume, normals pointing
// inward, ordered left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum extracts the planes of a view-projection matrix with the
// Gribb/Hartmann method. Planes are normalized.
func NewFrustum(m math3d.Mat4) Frustum {
	// Row i of the column-major matrix is m[i], m[4+i], m[8+i], m[12+i].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[4+i], m[8+i]), m[12+i]
	}
	n3, d3 := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[2*axis] = Plane{Normal: n3.Add(n), D: d3 + d}
		f.Planes[2*axis+1] = Plane{Normal: n3.Sub(n), D: d3 - d}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectsBox reports whether any part of b may be inside the frustum.
// It tests the corner farthest along each plane normal, so boxes near a
// frustum corner can pass while being outside.
func (f Frustum) IntersectsBox(b math3d.Box3) bool {
	if b.IsEmpty() {
		return false
	}
	for _, plane := range f.Planes {
		p := math3d.V3(
			pick(plane.Normal.X >= 0, b.Max.X, b.Min.X),
			pick(plane.Normal.Y >= 0, b.Max.Y, b.Min.Y),
			pick(plane.Normal.Z >= 0, b.Max.Z, b.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsBox reports whether b lies entirely inside the frustum.
func (f Frustum) ContainsBox(b math3d.Box3) bool {
	if b.IsEmpty() {
		return false
	}
	for _, plane := range f.Planes {
		n := math3d.V3(
			pick(plane.Normal.X >= 0, b.Min.X, b.Max.X),
			pick(plane.Normal.Y >= 0, b.Min.Y, b.Max.Y),
			pick(plane.Normal.Z >= 0, b.Min.Z, b.Max.Z),
		)
		if plane.DistanceToPoint(n) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere touches the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
