package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCamera() *PerspectiveCamera {
	cam := NewPerspectiveCamera(60, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})
	cam.LookAt(mgl32.Vec3{})
	return cam
}

func TestFrustumPlaneDistances(t *testing.T) {
	f := FrustumFromVP(testCamera().GetViewProjectionMatrix())

	origin := mgl32.Vec3{}
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-4, "plane %d", i)
		assert.Greater(t, p.DistanceTo(origin), float32(0), "plane %d", i)
	}
	assert.InDelta(t, 9.9, f.Planes[4].DistanceTo(origin), 1e-3)
	assert.InDelta(t, 90, f.Planes[5].DistanceTo(origin), 1e-2)
}

func TestAABBIntersectsFrustum(t *testing.T) {
	f := FrustumFromVP(testCamera().GetViewProjectionMatrix())

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"at target", AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, true},
		{"behind camera", AABB{Min: mgl32.Vec3{-1, -1, 19}, Max: mgl32.Vec3{1, 1, 21}}, false},
		{"past far plane", AABB{Min: mgl32.Vec3{-1, -1, -201}, Max: mgl32.Vec3{1, 1, -199}}, false},
		{"off to the side", AABB{Min: mgl32.Vec3{49, -1, -1}, Max: mgl32.Vec3{51, 1, 1}}, false},
		{"straddling left edge", AABB{Min: mgl32.Vec3{-20, -1, -1}, Max: mgl32.Vec3{0, 1, 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.IntersectsFrustum(&f))
		})
	}
}

func TestComputeAABBTransformsCorners(t *testing.T) {
	m := CreatePlane(2, 2, 1, 1)
	world := mgl32.Translate3D(5, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))

	box := ComputeAABB(m, world)
	assert.InDelta(t, 3, box.Min.X(), 1e-5)
	assert.InDelta(t, 7, box.Max.X(), 1e-5)

	// same result without the cached local box
	m.HasLocalAABB = false
	slow := ComputeAABB(m, world)
	assert.InDelta(t, box.Min.X(), slow.Min.X(), 1e-5)
	assert.InDelta(t, box.Max.Z(), slow.Max.Z(), 1e-5)
}

func TestSceneNodesInFrustum(t *testing.T) {
	s := NewScene()
	front := NewNode("front")
	front.Mesh = CreatePlane(1, 1, 1, 1)
	behind := NewNode("behind")
	behind.Mesh = CreatePlane(1, 1, 1, 1)
	behind.SetPosition(mgl32.Vec3{0, 0, 30})
	s.AddNode(front)
	s.AddNode(behind)

	in := s.NodesInFrustum(testCamera().GetViewProjectionMatrix())
	require.Len(t, in, 1)
	assert.Same(t, front, in[0])
}
