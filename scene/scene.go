package scene

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
)

// Scene manages a collection of nodes, lights and the active camera
type Scene struct {
	Root       *Node
	Camera     *PerspectiveCamera
	Lights     []*Light
	Background core.Color
}

// Light types
const (
	LightTypeAmbient = iota
	LightTypeSpot
)

// Light represents a light source. Ambient lights only use Color and Intensity.
type Light struct {
	Type      int
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	Color     core.Color
	Intensity float32
	// Distance is the range at which the light falls off to zero (0 = unlimited).
	Distance float32
	// Angle is the cone half-angle in radians.
	Angle float32
	// Penumbra is the fraction of the cone that is attenuated, in [0, 1].
	Penumbra float32

	CastShadow    bool
	ShadowMapSize int
}

func NewAmbientLight(color core.Color) *Light {
	return &Light{Type: LightTypeAmbient, Color: color, Intensity: 1}
}

// NewSpotLight creates a spot light aimed at the origin.
func NewSpotLight(color core.Color, intensity, distance, angle, penumbra float32) *Light {
	if penumbra < 0 {
		penumbra = 0
	}
	if penumbra > 1 {
		penumbra = 1
	}
	return &Light{
		Type:          LightTypeSpot,
		Color:         color,
		Intensity:     intensity,
		Distance:      distance,
		Angle:         angle,
		Penumbra:      penumbra,
		ShadowMapSize: 512,
	}
}

// Direction is the unit vector from the light toward its target.
func (l *Light) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// Shadow camera planes of a spot light; Far falls back to shadowFar when the
// light has unlimited range.
const (
	shadowNear = 0.5
	shadowFar  = 500
)

// ShadowViewProjection is the light-space transform of a spot light's shadow
// map: a square perspective frustum that exactly encloses the cone.
func (l *Light) ShadowViewProjection() mgl32.Mat4 {
	far := l.Distance
	if far <= 0 {
		far = shadowFar
	}
	proj := mgl32.Perspective(2*l.Angle, 1, shadowNear, far)

	dir := l.Direction()
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(l.Position, l.Position.Add(dir), up)
	return proj.Mul4(view)
}

// ConeCosines returns the cosines at which the cone starts (outer) and
// reaches full intensity (inner). A penumbra of 0 gives a hard edge.
func (l *Light) ConeCosines() (outer, inner float32) {
	outer = math32.Cos(l.Angle)
	inner = math32.Cos(l.Angle * (1 - l.Penumbra))
	return outer, inner
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// SetPositionAxis replaces one component (0=X, 1=Y, 2=Z) of the position.
func (l *Light) SetPositionAxis(axis int, v float32) {
	l.Position[axis] = v
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Lights:     make([]*Light, 0),
		Background: core.ColorBlack,
	}
}

func (s *Scene) SetCamera(camera *PerspectiveCamera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// Ambient returns the summed color of all ambient lights.
func (s *Scene) Ambient() core.Color {
	var c core.Color
	for _, l := range s.Lights {
		if l == nil || l.Type != LightTypeAmbient {
			continue
		}
		c.R += l.Color.R * l.Intensity
		c.G += l.Color.G * l.Intensity
		c.B += l.Color.B * l.Intensity
	}
	c.A = 1
	return c
}

// GetVisibleNodes returns all nodes with meshes that are visible
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	s.Root.Traverse(func(node *Node) {
		if node.Visible && node.Mesh != nil {
			visible = append(visible, node)
		}
	})
	return visible
}

// Describe renders the scene graph as an indented outline.
func (s *Scene) Describe() string {
	var b strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fmt.Fprintf(&b, "%s%s", strings.Repeat("  ", depth), n.Name)
		if n.Mesh != nil {
			fmt.Fprintf(&b, " (mesh %q, %d verts)", n.Mesh.Name, len(n.Mesh.Vertices))
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(s.Root, 0)
	for _, l := range s.Lights {
		switch l.Type {
		case LightTypeAmbient:
			fmt.Fprintf(&b, "ambient light %.2f %.2f %.2f\n", l.Color.R, l.Color.G, l.Color.B)
		case LightTypeSpot:
			fmt.Fprintf(&b, "spot light at (%.1f, %.1f, %.1f) intensity %.1f\n",
				l.Position.X(), l.Position.Y(), l.Position.Z(), l.Intensity)
		}
	}
	return b.String()
}
