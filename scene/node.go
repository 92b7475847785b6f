package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool

	CastShadow    bool
	ReceiveShadow bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      mgl32.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

func (n *Node) GetWorldMatrix() mgl32.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.GetWorldMatrix().Mul4(localMatrix)
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos mgl32.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

// SetPositionAxis replaces one component (0=X, 1=Y, 2=Z) of the position.
func (n *Node) SetPositionAxis(axis int, v float32) {
	n.Transform.Position[axis] = v
	n.MarkWorldMatrixDirty()
}

// SetRotation sets the Euler angles in radians.
func (n *Node) SetRotation(rot mgl32.Vec3) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

// SetRotationAxis replaces one Euler angle (0=X, 1=Y, 2=Z).
func (n *Node) SetRotationAxis(axis int, radians float32) {
	n.Transform.Rotation[axis] = radians
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale mgl32.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

// SetShadows flags this node and every descendant as shadow caster and receiver.
func (n *Node) SetShadows(cast, receive bool) {
	n.Traverse(func(c *Node) {
		c.CastShadow = cast
		c.ReceiveShadow = receive
	})
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
