package math3d

import "math"

// Euler holds rotation angles in radians around X, Y and Z.
// The rotation matrix is Rx · Ry · Rz (intrinsic X, then Y, then Z).
type Euler struct {
	X, Y, Z float64
}

// E creates a new Euler.
func E(x, y, z float64) Euler {
	return Euler{x, y, z}
}

// EulerFromMat4 extracts XYZ angles from the upper 3x3 block of m, which
// must be a pure (unscaled) rotation.
func EulerFromMat4(m Mat4) Euler {
	m11, m12, m13 := m[0], m[4], m[8]
	m22, m23 := m[5], m[9]
	m32, m33 := m[6], m[10]

	var e Euler
	e.Y = math.Asin(Clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: X and Z rotate about the same axis.
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// Vec3 returns the angles as a vector.
func (e Euler) Vec3() Vec3 {
	return Vec3{e.X, e.Y, e.Z}
}

// Add returns the component-wise sum of two rotations' angles.
func (e Euler) Add(o Euler) Euler {
	return Euler{e.X + o.X, e.Y + o.Y, e.Z + o.Z}
}

// Quat returns the equivalent quaternion.
func (e Euler) Quat() Quat {
	return QuatFromEuler(e)
}
