package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piggy-viewer/core"
)

func TestNewSpotLightClampsPenumbra(t *testing.T) {
	l := NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, 25)
	assert.Equal(t, float32(1), l.Penumbra)
	assert.Equal(t, LightTypeSpot, l.Type)

	l = NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, -1)
	assert.Equal(t, float32(0), l.Penumbra)
}

func TestLightDirection(t *testing.T) {
	l := NewSpotLight(core.ColorWhite, 1, 0, 1, 0)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction())

	l.Position = mgl32.Vec3{10, 40, 25}
	d := l.Direction()
	assert.InDelta(t, 1, d.Len(), 1e-6)
	assert.Less(t, d.Y(), float32(0))

	l.SetPositionAxis(1, 0)
	assert.Equal(t, float32(0), l.Position.Y())
}

func TestSpotShadowViewProjection(t *testing.T) {
	l := NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, 1)
	l.Position = mgl32.Vec3{10, 40, 25}
	vp := l.ShadowViewProjection()

	// the target lands in the middle of the map
	c := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, c.X()/c.W(), 1e-5)
	assert.InDelta(t, 0, c.Y()/c.W(), 1e-5)
	z := c.Z() / c.W()
	assert.Greater(t, z, float32(-1))
	assert.Less(t, z, float32(1))

	// a point past the far plane is clipped
	beyond := l.Position.Add(l.Direction().Mul(150))
	f := vp.Mul4x1(beyond.Vec4(1))
	assert.Greater(t, f.Z()/f.W(), float32(1))

	// straight down still yields a valid matrix
	l.Position = mgl32.Vec3{0, 10, 0}
	d := l.ShadowViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, d.X()/d.W(), 1e-5)
}

func TestConeCosines(t *testing.T) {
	l := NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, 1)
	outer, inner := l.ConeCosines()
	assert.InDelta(t, math32.Sqrt(3)/2, outer, 1e-6)
	assert.InDelta(t, 1, inner, 1e-6)

	hard := NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, 0)
	outer, inner = hard.ConeCosines()
	assert.Equal(t, outer, inner)
}

func TestSceneAmbient(t *testing.T) {
	s := NewScene()
	s.AddLight(NewAmbientLight(core.ColorHex(0xdddddd)))
	s.AddLight(NewSpotLight(core.ColorWhite, 2, 100, 1, 0))

	a := s.Ambient()
	assert.InDelta(t, float32(0xdd)/255, a.R, 1e-6)
	assert.Equal(t, float32(1), a.A)
}

func TestSceneVisibleNodes(t *testing.T) {
	s := NewScene()
	a := NewNode("a")
	a.Mesh = CreatePlane(1, 1, 1, 1)
	b := NewNode("b")
	b.Mesh = CreatePlane(1, 1, 1, 1)
	b.Visible = false
	group := NewNode("group")
	group.AddChild(a)
	group.AddChild(b)
	s.AddNode(group)

	visible := s.GetVisibleNodes()
	require.Len(t, visible, 1)
	assert.Same(t, a, visible[0])
}

func TestSceneDescribe(t *testing.T) {
	s := NewScene()
	n := NewNode("Plane")
	n.Mesh = CreatePlane(1, 1, 1, 1)
	s.AddNode(n)
	s.AddLight(NewAmbientLight(core.ColorWhite))

	out := s.Describe()
	assert.Contains(t, out, "Root\n")
	assert.Contains(t, out, "  Plane (mesh \"Plane\", 4 verts)")
	assert.Contains(t, out, "ambient light")
}

func TestNodeWorldMatrix(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	parent.SetPosition(mgl32.Vec3{1, 2, 3})
	child.SetPositionAxis(0, 1)
	p := child.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 2, p.X(), 1e-6)
	assert.InDelta(t, 2, p.Y(), 1e-6)

	// rotating the parent moves the cached child matrix
	parent.SetRotationAxis(2, math32.Pi/2)
	p = child.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 3, p.Y(), 1e-5)
}

func TestNodeReparent(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	child := NewNode("child")
	a.AddChild(child)
	b.AddChild(child)

	assert.Empty(t, a.Children)
	assert.Same(t, b, child.Parent)
	assert.Same(t, child, b.Find("child"))
	assert.Nil(t, a.Find("child"))
}

func TestNodeSetShadows(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)

	root.SetShadows(true, true)
	assert.True(t, child.CastShadow)
	assert.True(t, child.ReceiveShadow)
}
