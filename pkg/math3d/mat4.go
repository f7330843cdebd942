package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order: element (row, col)
// lives at index col*4+row.
//
//	| 0  4  8  12 |
//	| 1  5  9  13 |
//	| 2  6  10 14 |
//	| 3  7  11 15 |
//
// For an affine transform, columns 0-2 hold the scaled basis vectors and
// column 3 holds the translation.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m.SetTranslation(v)
	return m
}

// Scale returns a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation of angle radians around the X axis.
func RotateX(angle float64) Mat4 {
	return MakeRotationFromEuler(Euler{X: angle})
}

// RotateY returns a rotation of angle radians around the Y axis.
func RotateY(angle float64) Mat4 {
	return MakeRotationFromEuler(Euler{Y: angle})
}

// RotateZ returns a rotation of angle radians around the Z axis.
func RotateZ(angle float64) Mat4 {
	return MakeRotationFromEuler(Euler{Z: angle})
}

// Rotate returns a rotation of angle radians around an arbitrary axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	return MakeRotationFromQuat(QuatFromAxisAngle(axis, angle))
}

// MakeRotationFromEuler returns the rotation matrix Rx · Ry · Rz.
func MakeRotationFromEuler(e Euler) Mat4 {
	return Compose(Vec3{}, e, One3())
}

// MakeRotationFromQuat returns the rotation matrix for a unit quaternion.
func MakeRotationFromQuat(q Quat) Mat4 {
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return Mat4{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}

// Compose builds T · R · S from a position, XYZ Euler rotation and scale.
// The scale is folded into the rotation columns rather than multiplied in.
func Compose(pos Vec3, rot Euler, scale Vec3) Mat4 {
	a, b := math.Cos(rot.X), math.Sin(rot.X)
	c, d := math.Cos(rot.Y), math.Sin(rot.Y)
	e, f := math.Cos(rot.Z), math.Sin(rot.Z)
	ae, af, be, bf := a*e, a*f, b*e, b*f

	return Mat4{
		c * e * scale.X, (af + be*d) * scale.X, (bf - ae*d) * scale.X, 0,
		-c * f * scale.Y, (ae - bf*d) * scale.Y, (be + af*d) * scale.Y, 0,
		d * scale.Z, -b * c * scale.Z, a * c * scale.Z, 0,
		pos.X, pos.Y, pos.Z, 1,
	}
}

// LookAt returns a rotation whose -Z axis points from eye toward target.
// This is the orientation of an object at eye, not a view matrix.
//
// If eye and target coincide the view axis defaults to +Z. If up is parallel
// to the view axis, the view axis is nudged so a right vector exists.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target)
	if z.LenSq() == 0 {
		z.Z = 1
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.LenSq() == 0 {
		if math.Abs(up.Z) == 1 {
			z.X += 0.0001
		} else {
			z.Z += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// ViewLookAt returns the view matrix of a camera at eye looking at target.
func ViewLookAt(eye, target, up Vec3) Mat4 {
	m := LookAt(eye, target, up)
	m.SetTranslation(eye)
	return m.Inverse()
}

// Perspective returns a right-handed perspective projection.
// fov is the vertical field of view in radians and aspect is width/height.
// Clip w equals the view-space depth -z.
func Perspective(fov, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fov/2)
	nf := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// Orthographic returns an orthographic projection.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Mul returns the full matrix product a · b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			m[col*4+row] = a[row]*b[col*4] +
				a[4+row]*b[col*4+1] +
				a[8+row]*b[col*4+2] +
				a[12+row]*b[col*4+3]
		}
	}
	return m
}

// MulVec3 transforms v as a point (w=1) and divides by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	w = 1 / w
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) * w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) * w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) * w,
	}
}

// MulVec3Dir transforms v as a direction (w=0, translation ignored).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for col := range 4 {
		for row := range 4 {
			t[row*4+col] = m[col*4+row]
		}
	}
	return t
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m[0]*(m[5]*(m[10]*m[15]-m[14]*m[11])-m[9]*(m[6]*m[15]-m[14]*m[7])+m[13]*(m[6]*m[11]-m[10]*m[7])) -
		m[4]*(m[1]*(m[10]*m[15]-m[14]*m[11])-m[9]*(m[2]*m[15]-m[14]*m[3])+m[13]*(m[2]*m[11]-m[10]*m[3])) +
		m[8]*(m[1]*(m[6]*m[15]-m[14]*m[7])-m[5]*(m[2]*m[15]-m[14]*m[3])+m[13]*(m[2]*m[7]-m[6]*m[3])) -
		m[12]*(m[1]*(m[6]*m[11]-m[10]*m[7])-m[5]*(m[2]*m[11]-m[10]*m[3])+m[9]*(m[2]*m[7]-m[6]*m[3]))
}

// Inverse returns the inverse matrix, or the identity if m is singular.
func (m Mat4) Inverse() Mat4 {
	inv, ok := m.InverseOK()
	if !ok {
		return Identity()
	}
	return inv
}

// InverseOK returns the inverse matrix and whether m was invertible.
func (m Mat4) InverseOK() (Mat4, bool) {
	det := m.Determinant()
	if det == 0 || !isFinite(det) {
		return Mat4{}, false
	}

	invDet := 1.0 / det
	var inv Mat4

	inv[0] = (m[5]*(m[10]*m[15]-m[14]*m[11]) - m[9]*(m[6]*m[15]-m[14]*m[7]) + m[13]*(m[6]*m[11]-m[10]*m[7])) * invDet
	inv[1] = -(m[1]*(m[10]*m[15]-m[14]*m[11]) - m[9]*(m[2]*m[15]-m[14]*m[3]) + m[13]*(m[2]*m[11]-m[10]*m[3])) * invDet
	inv[2] = (m[1]*(m[6]*m[15]-m[14]*m[7]) - m[5]*(m[2]*m[15]-m[14]*m[3]) + m[13]*(m[2]*m[7]-m[6]*m[3])) * invDet
	inv[3] = -(m[1]*(m[6]*m[11]-m[10]*m[7]) - m[5]*(m[2]*m[11]-m[10]*m[3]) + m[9]*(m[2]*m[7]-m[6]*m[3])) * invDet

	inv[4] = -(m[4]*(m[10]*m[15]-m[14]*m[11]) - m[8]*(m[6]*m[15]-m[14]*m[7]) + m[12]*(m[6]*m[11]-m[10]*m[7])) * invDet
	inv[5] = (m[0]*(m[10]*m[15]-m[14]*m[11]) - m[8]*(m[2]*m[15]-m[14]*m[3]) + m[12]*(m[2]*m[11]-m[10]*m[3])) * invDet
	inv[6] = -(m[0]*(m[6]*m[15]-m[14]*m[7]) - m[4]*(m[2]*m[15]-m[14]*m[3]) + m[12]*(m[2]*m[7]-m[6]*m[3])) * invDet
	inv[7] = (m[0]*(m[6]*m[11]-m[10]*m[7]) - m[4]*(m[2]*m[11]-m[10]*m[3]) + m[8]*(m[2]*m[7]-m[6]*m[3])) * invDet

	inv[8] = (m[4]*(m[9]*m[15]-m[13]*m[11]) - m[8]*(m[5]*m[15]-m[13]*m[7]) + m[12]*(m[5]*m[11]-m[9]*m[7])) * invDet
	inv[9] = -(m[0]*(m[9]*m[15]-m[13]*m[11]) - m[8]*(m[1]*m[15]-m[13]*m[3]) + m[12]*(m[1]*m[11]-m[9]*m[3])) * invDet
	inv[10] = (m[0]*(m[5]*m[15]-m[13]*m[7]) - m[4]*(m[1]*m[15]-m[13]*m[3]) + m[12]*(m[1]*m[7]-m[5]*m[3])) * invDet
	inv[11] = -(m[0]*(m[5]*m[11]-m[9]*m[7]) - m[4]*(m[1]*m[11]-m[9]*m[3]) + m[8]*(m[1]*m[7]-m[5]*m[3])) * invDet

	inv[12] = -(m[4]*(m[9]*m[14]-m[13]*m[10]) - m[8]*(m[5]*m[14]-m[13]*m[6]) + m[12]*(m[5]*m[10]-m[9]*m[6])) * invDet
	inv[13] = (m[0]*(m[9]*m[14]-m[13]*m[10]) - m[8]*(m[1]*m[14]-m[13]*m[2]) + m[12]*(m[1]*m[10]-m[9]*m[2])) * invDet
	inv[14] = -(m[0]*(m[5]*m[14]-m[13]*m[6]) - m[4]*(m[1]*m[14]-m[13]*m[2]) + m[12]*(m[1]*m[6]-m[5]*m[2])) * invDet
	inv[15] = (m[0]*(m[5]*m[10]-m[9]*m[6]) - m[4]*(m[1]*m[10]-m[9]*m[2]) + m[8]*(m[1]*m[6]-m[5]*m[2])) * invDet

	return inv, true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[col*4+row]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[col*4+row] = val
}

// Column returns the first three rows of column i.
func (m Mat4) Column(i int) Vec3 {
	return Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

// Translation returns column 3.
func (m Mat4) Translation() Vec3 {
	return m.Column(3)
}

// SetTranslation overwrites column 3.
func (m *Mat4) SetTranslation(v Vec3) {
	m[12], m[13], m[14] = v.X, v.Y, v.Z
}

// MaxScaleOnAxis returns the largest basis vector length.
func (m Mat4) MaxScaleOnAxis() float64 {
	return math.Max(m.Column(0).Len(), math.Max(m.Column(1).Len(), m.Column(2).Len()))
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}
