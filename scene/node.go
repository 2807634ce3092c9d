package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

// Layers is a bitmask of render layers a node belongs to.
type Layers uint32

const (
	LayerDefault Layers = 1 << iota
	// LayerBloom tags a node for the selective bloom pass.
	LayerBloom
)

func (l Layers) Has(mask Layers) bool { return l&mask != 0 }

// Node represents an object in the scene graph
type Node struct {
	Name      string
	ID        uuid.UUID
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	// Material overrides Mesh.Material. Glow passes swap this pointer per node,
	// so meshes can stay shared.
	Material *Material
	Layers   Layers
	Visible  bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      mgl32.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		ID:               uuid.New(),
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Layers:           LayerDefault,
		Visible:          true,
		worldMatrixDirty: true,
	}
}

// LogField identifies n in structured logs. glTF names repeat across nodes,
// ids do not.
func (n *Node) LogField() zap.Field {
	return zap.Stringer("node_id", n.ID)
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	child.MarkWorldMatrixDirty()
	n.Children = append(n.Children, child)
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

// IsMesh reports whether the node draws anything.
func (n *Node) IsMesh() bool { return n.Mesh != nil }

// GetMaterial returns the node's material, falling back to the mesh's.
func (n *Node) GetMaterial() *Material {
	if n.Material != nil {
		return n.Material
	}
	if n.Mesh != nil {
		return n.Mesh.Material
	}
	return nil
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

func (n *Node) SetRotation(rot mgl32.Quat) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale mgl32.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta mgl32.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis mgl32.Vec3, angle float32) {
	rotation := mgl32.QuatRotate(angle, axis)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// RotateY spins the node about its local up axis.
func (n *Node) RotateY(angle float32) {
	n.Rotate(mgl32.Vec3{0, 1, 0}, angle)
}

// WorldPosition is the translation part of the world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.GetWorldMatrix().Col(3).Vec3()
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

// FindAllFold returns every mesh node whose name equals name, ignoring case.
func (n *Node) FindAllFold(name string) []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.Mesh != nil && strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	})
	return out
}

// Meshes returns the node itself if it draws, otherwise its mesh descendants.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			out = append(out, c)
		}
	})
	return out
}
