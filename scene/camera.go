package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveCamera is a look-at camera with a vertical field of view in degrees.
// The projection matrix is cached; call UpdateProjectionMatrix after changing
// FOV, Aspect, Near or Far.
type PerspectiveCamera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32
	Aspect   float32
	Near     float32
	Far      float32

	projectionMatrix mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *PerspectiveCamera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
}

func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) {
	c.Target = target
}

// UpdateAspectRatio sets Aspect to width/height and recomputes the projection.
// A zero height is ignored.
func (c *PerspectiveCamera) UpdateAspectRatio(width, height float32) {
	if height <= 0 || width <= 0 {
		return
	}
	c.Aspect = width / height
	c.UpdateProjectionMatrix()
}

func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projectionMatrix = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) GetProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *PerspectiveCamera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *PerspectiveCamera) GetViewProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix.Mul4(c.GetViewMatrix())
}
