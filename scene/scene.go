package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

// Scene manages the node graph, the active camera and the lighting.
type Scene struct {
	Root     *Node
	Camera   *Camera
	Sun      Light
	Ambient  core.Color
	SkyColor core.Color
}

// Light is a directional light.
type Light struct {
	Direction mgl32.Vec3
	Color     core.Color
	Intensity float32
}

func NewScene() *Scene {
	return &Scene{
		Root: NewNode("Root"),
		Sun: Light{
			Direction: mgl32.Vec3{0.5, -1, -0.5}.Normalize(),
			Color:     core.ColorWhite,
			Intensity: 0.8,
		},
		Ambient:  core.Color{R: 0.35, G: 0.35, B: 0.4, A: 1.0},
		SkyColor: core.Color{R: 0.02, G: 0.02, B: 0.05, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// GetVisibleNodes returns all visible nodes with meshes.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	s.Root.Traverse(func(node *Node) {
		if node.Visible && node.Mesh != nil {
			visible = append(visible, node)
		}
	})
	return visible
}
