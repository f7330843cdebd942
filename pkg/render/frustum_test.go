package render

import (
	"math"
	"testing"

	"github.com/taigrr/speedr/pkg/math3d"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) math3d.Box3 {
	return math3d.Box3{Min: math3d.V3(minX, minY, minZ), Max: math3d.V3(maxX, maxY, maxZ)}
}

func TestPlaneDistanceToPoint(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}

	zero := Plane{D: 3}
	zero.Normalize()
	if zero.D != 3 {
		t.Errorf("degenerate plane changed: %v", zero)
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100)
	frustum := NewFrustum(proj)

	for i, plane := range frustum.Planes {
		if math.Abs(plane.Normal.Len()-1.0) > 1e-6 {
			t.Errorf("plane %d normal length = %v, want 1.0", i, plane.Normal.Len())
		}
	}

	near := frustum.Planes[FrustumNear]
	if math.Abs(near.DistanceToPoint(math3d.V3(0, 0, -0.1))) > 1e-9 {
		t.Errorf("near plane does not pass through z=-near: %v", near)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100)
	frustum := NewFrustum(proj)

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center near", math3d.V3(0, 0, -1), true},
		{"center mid", math3d.V3(0, 0, -50), true},
		{"center far", math3d.V3(0, 0, -99), true},
		{"behind camera", math3d.V3(0, 0, 1), false},
		{"too far", math3d.V3(0, 0, -200), false},
		{"too close", math3d.V3(0, 0, -0.01), false},
		{"outside left", math3d.V3(-30, 0, -10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := frustum.ContainsPoint(tc.point)
			if result != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, result, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectsBox(t *testing.T) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 1, 100)
	frustum := NewFrustum(proj)

	tests := []struct {
		name     string
		box      math3d.Box3
		expected bool
	}{
		{"fully inside", box(-1, -1, -10, 1, 1, -5), true},
		{"crosses near plane", box(-1, -1, -2, 1, 1, 2), true},
		{"behind camera", box(-1, -1, 5, 1, 1, 10), false},
		{"beyond far plane", box(-1, -1, -150, 1, 1, -120), false},
		{"far to the right", box(100, -1, -10, 110, 1, -5), false},
		{"contains frustum", box(-200, -200, -200, 200, 200, 200), true},
		{"empty", math3d.EmptyBox3(), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := frustum.IntersectsBox(tc.box)
			if result != tc.expected {
				t.Errorf("IntersectsBox(%v) = %v, want %v", tc.box, result, tc.expected)
			}
		})
	}
}

func TestFrustumContainsBox(t *testing.T) {
	frustum := NewFrustum(math3d.Perspective(math.Pi/3, 1, 1, 100))

	if !frustum.ContainsBox(box(-1, -1, -10, 1, 1, -5)) {
		t.Error("small box in front should be contained")
	}
	if frustum.ContainsBox(box(-1, -1, -2, 1, 1, 2)) {
		t.Error("box crossing the near plane should not be contained")
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	frustum := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 1, 100))

	tests := []struct {
		name     string
		center   math3d.Vec3
		radius   float64
		expected bool
	}{
		{"inside", math3d.V3(0, 0, -10), 1.0, true},
		{"straddles near plane", math3d.V3(0, 0, -0.5), 1.0, true},
		{"behind", math3d.V3(0, 0, 5), 1.0, false},
		{"far behind", math3d.V3(0, 0, 20), 1.0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := frustum.IntersectsSphere(tc.center, tc.radius)
			if result != tc.expected {
				t.Errorf("IntersectsSphere(%v, %v) = %v, want %v", tc.center, tc.radius, result, tc.expected)
			}
		})
	}
}

func TestFrustumWithRotatedCamera(t *testing.T) {
	proj := math3d.Perspective(math.Pi/3, 1.0, 1.0, 100.0)
	view := math3d.ViewLookAt(math3d.Zero3(), math3d.V3(10, 0, 0), math3d.Up())
	frustum := NewFrustum(proj.Mul(view))

	if !frustum.ContainsPoint(math3d.V3(10, 0, 0)) {
		t.Error("point in front of rotated camera should be visible")
	}
	if frustum.ContainsPoint(math3d.V3(-10, 0, 0)) {
		t.Error("point behind rotated camera should not be visible")
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000.0)
	view := math3d.ViewLookAt(math3d.V3(0, 10, 20), math3d.Zero3(), math3d.Up())
	viewProj := proj.Mul(view)

	for b.Loop() {
		_ = NewFrustum(viewProj)
	}
}

func BenchmarkFrustumIntersectsBox(b *testing.B) {
	frustum := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000.0))

	b.Run("visible", func(b *testing.B) {
		bx := box(-1, -1, -15, 1, 1, -5)
		for b.Loop() {
			_ = frustum.IntersectsBox(bx)
		}
	})
	b.Run("culled", func(b *testing.B) {
		bx := box(-1, -1, 5, 1, 1, 15)
		for b.Loop() {
			_ = frustum.IntersectsBox(bx)
		}
	})
}

func BenchmarkFrustumIntersectsSphere(b *testing.B) {
	frustum := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000.0))
	center := math3d.V3(0, 0, -10)

	for b.Loop() {
		_ = frustum.IntersectsSphere(center, 2)
	}
}
