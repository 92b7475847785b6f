package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveCameraAspect(t *testing.T) {
	cam := NewPerspectiveCamera(100, 1, 0.25, 1000)

	cam.UpdateAspectRatio(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect, 1e-6)

	f := 1 / math32.Tan(mgl32.DegToRad(50))
	proj := cam.GetProjectionMatrix()
	assert.InDelta(t, f, proj.At(1, 1), 1e-5)
	assert.InDelta(t, f/cam.Aspect, proj.At(0, 0), 1e-5)

	// minimised windows report zero sizes
	cam.UpdateAspectRatio(0, 0)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect, 1e-6)
}

func TestPerspectiveCameraView(t *testing.T) {
	cam := NewPerspectiveCamera(100, 1, 0.25, 1000)
	cam.SetPosition(mgl32.Vec3{0, 25, 60})
	cam.LookAt(mgl32.Vec3{})

	// the target lands on the view axis
	p := cam.GetViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
	assert.Less(t, p.Z(), float32(0))
}
