package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestColorHex(t *testing.T) {
	c := ColorHex(0xcccccc)
	assert.InDelta(t, 0.8, c.R, 1e-6)
	assert.InDelta(t, 0.8, c.G, 1e-6)
	assert.InDelta(t, 0.8, c.B, 1e-6)
	assert.Equal(t, float32(1), c.A)

	assert.Equal(t, Color{1, 0, 0, 1}, ColorHex(0xff0000))
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Ident4(), tr.GetMatrix())

	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := tr.GetMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 3, p.X(), 1e-6)
	assert.InDelta(t, 2, p.Y(), 1e-6)
}

func TestTransformRotationOrder(t *testing.T) {
	// Rx applied last: rotate Z by 90 then X by 90 sends +X to +Z
	tr := NewTransform()
	tr.Rotation = mgl32.Vec3{mgl32.DegToRad(90), 0, mgl32.DegToRad(90)}
	p := tr.RotationMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, 0, p.X(), 1e-6)
	assert.InDelta(t, 0, p.Y(), 1e-6)
	assert.InDelta(t, 1, p.Z(), 1e-6)
}
