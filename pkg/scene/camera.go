package scene

import "github.com/taigrr/speedr/pkg/math3d"

// PerspectiveCamera projects with a symmetric frustum. The camera looks
// down its local -Z axis.
type PerspectiveCamera struct {
	Node

	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / height
	Near   float64
	Far    float64

	projection    math3d.Mat4
	projectionInv math3d.Mat4
}

// NewPerspectiveCamera returns a camera with an up-to-date projection matrix.
func NewPerspectiveCamera(fov, aspect, near, far float64) *PerspectiveCamera {
	c := &PerspectiveCamera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.init(c)
	c.UpdateProjectionMatrix()
	return c
}

func (c *PerspectiveCamera) Kind() Kind { return KindCamera }

// UpdateProjectionMatrix recomputes the projection after FOV, Aspect, Near
// or Far change.
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projection = math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	c.projectionInv = c.projection.Inverse()
}

// ProjectionMatrix returns the projection from the last update.
func (c *PerspectiveCamera) ProjectionMatrix() math3d.Mat4 {
	return c.projection
}

// ProjectionMatrixInverse maps clip space back to view space.
func (c *PerspectiveCamera) ProjectionMatrixInverse() math3d.Mat4 {
	return c.projectionInv
}

// ViewMatrix returns the inverse of the world matrix.
func (c *PerspectiveCamera) ViewMatrix() math3d.Mat4 {
	return c.world.Inverse()
}

// ViewProjectionMatrix returns projection · view.
func (c *PerspectiveCamera) ViewProjectionMatrix() math3d.Mat4 {
	return c.projection.Mul(c.ViewMatrix())
}

// WorldDirection returns the unit view direction in world space.
func (c *PerspectiveCamera) WorldDirection() math3d.Vec3 {
	return c.world.MulVec3Dir(math3d.Forward()).Normalize()
}

// Project maps a world point to normalized device coordinates.
func (c *PerspectiveCamera) Project(p math3d.Vec3) math3d.Vec3 {
	return c.ViewProjectionMatrix().MulVec3(p)
}

// Unproject maps normalized device coordinates back to world space.
func (c *PerspectiveCamera) Unproject(ndc math3d.Vec3) math3d.Vec3 {
	return c.world.Mul(c.projectionInv).MulVec3(ndc)
}
