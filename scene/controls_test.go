package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func newTestControls() *OrbitControls {
	cam := NewPerspectiveCamera(100, 1, 0.25, 1000)
	cam.SetPosition(mgl32.Vec3{0, 25, 60})
	cam.LookAt(mgl32.Vec3{})
	return NewOrbitControls(cam)
}

func TestOrbitControlsAutoRotate(t *testing.T) {
	oc := newTestControls()
	dist := oc.Distance()
	polar := oc.Polar()

	oc.AutoRotate = true
	moved := oc.Update(1.0 / 60)

	assert.True(t, moved)
	assert.InDelta(t, -2*math32.Pi/60*2/60, oc.Azimuth(), 1e-5)
	assert.InDelta(t, dist, oc.Distance(), 1e-3)
	assert.InDelta(t, polar, oc.Polar(), 1e-4)
}

func TestOrbitControlsAutoRotateFullOrbit(t *testing.T) {
	oc := newTestControls()
	oc.AutoRotate = true
	// speed 2 is one orbit every 30 seconds; 7.5 s is a quarter turn
	for i := 0; i < 450; i++ {
		oc.Update(1.0 / 60)
	}
	assert.InDelta(t, -math32.Pi/2, oc.Azimuth(), 1e-2)
}

func TestOrbitControlsIdle(t *testing.T) {
	oc := newTestControls()
	before := oc.Camera.Position
	oc.Update(1.0 / 60)
	after := oc.Camera.Position
	for i := 0; i < 3; i++ {
		assert.InDelta(t, before[i], after[i], 1e-3)
	}
}

func TestOrbitControlsDrag(t *testing.T) {
	oc := newTestControls()
	oc.ViewportHeight = 600

	oc.PointerDown(0, 0, false)
	assert.True(t, oc.Dragging())
	oc.PointerMove(100, 0)
	oc.PointerUp()
	assert.False(t, oc.Dragging())

	oc.Update(1.0 / 60)
	assert.InDelta(t, -math32.Pi/3, oc.Azimuth(), 1e-4)
}

func TestOrbitControlsPolarClamp(t *testing.T) {
	oc := newTestControls()
	oc.ViewportHeight = 600
	oc.MaxPolarAngle = math32.Pi / 2

	oc.PointerDown(0, 0, false)
	oc.PointerMove(0, -10000)
	oc.Update(0)

	assert.InDelta(t, math32.Pi/2, oc.Polar(), 1e-3)
}

func TestOrbitControlsDisabledInput(t *testing.T) {
	oc := newTestControls()
	oc.EnableRotate = false
	oc.EnableZoom = false
	oc.EnablePan = false
	dist := oc.Distance()

	oc.PointerDown(0, 0, false)
	assert.False(t, oc.Dragging())
	oc.PointerDown(0, 0, true)
	assert.False(t, oc.Dragging())

	oc.Scroll(1)
	oc.Update(1.0 / 60)
	assert.InDelta(t, dist, oc.Distance(), 1e-3)
}

func TestOrbitControlsZoom(t *testing.T) {
	oc := newTestControls()
	dist := oc.Distance()

	oc.Scroll(1)
	oc.Update(1.0 / 60)
	assert.InDelta(t, dist*0.95, oc.Distance(), 1e-2)

	oc.MinDistance = dist
	oc.Scroll(1)
	oc.Update(1.0 / 60)
	assert.InDelta(t, dist, oc.Distance(), 1e-2)
}

func TestOrbitControlsPan(t *testing.T) {
	oc := newTestControls()
	oc.ViewportHeight = 600

	oc.PointerDown(0, 0, true)
	oc.PointerMove(50, 0)
	oc.PointerUp()
	oc.Update(1.0 / 60)

	assert.NotEqual(t, mgl32.Vec3{}, oc.Target)
	assert.InDelta(t, 0, oc.Target.Y(), 1e-4)
}
