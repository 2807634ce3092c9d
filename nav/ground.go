// Package nav keeps the first-person camera on the nav mesh.
package nav

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/pick"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

const (
	probeHeight = 10000
	probeFar    = 20000
)

// Prober finds the walkable surface below a point on the ground plane.
type Prober interface {
	HitXZ(x, z float32) (mgl32.Vec3, bool)
}

// Ground probes the nav mesh with a ray cast straight down.
type Ground struct {
	meshes []*scene.Node
}

func NewGround(nav []*scene.Node) *Ground {
	return &Ground{meshes: nav}
}

// HitXZ returns the topmost nav surface point at (x, z).
func (g *Ground) HitXZ(x, z float32) (mgl32.Vec3, bool) {
	if g == nil || len(g.meshes) == 0 {
		return mgl32.Vec3{}, false
	}
	ray := pick.Ray{
		Origin:    mgl32.Vec3{x, probeHeight, z},
		Direction: mgl32.Vec3{0, -1, 0},
	}
	hit, ok := pick.Meshes(ray, g.meshes, pick.Limits{Near: 0, Far: probeFar})
	if !ok {
		return mgl32.Vec3{}, false
	}
	return hit.Point, true
}
