package pick

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

func cubeAt(name string, pos mgl32.Vec3) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateCube(1)
	n.SetPosition(pos)
	return n
}

func forwardRay() Ray {
	return Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{0, 0, -1}}
}

func TestRaySphere(t *testing.T) {
	tests := []struct {
		name   string
		sphere scene.Sphere
		lim    Limits
		want   float32
		hit    bool
	}{
		{"ahead", scene.Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}, DefaultLimits, 9, true},
		{"behind", scene.Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}, DefaultLimits, 0, false},
		{"beside", scene.Sphere{Center: mgl32.Vec3{5, 0, -10}, Radius: 1}, DefaultLimits, 0, false},
		{"beyond far", scene.Sphere{Center: mgl32.Vec3{0, 0, -200}, Radius: 1}, DefaultLimits, 0, false},
		{"inside", scene.Sphere{Center: mgl32.Vec3{}, Radius: 2}, DefaultLimits, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RaySphere(forwardRay(), tt.sphere, tt.lim)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.InDelta(t, tt.want, got, 1e-4)
			}
		})
	}
}

func TestSpheresInflationWidensTarget(t *testing.T) {
	// Cube of size 1 has a bounding sphere radius of ~0.866.
	n := cubeAt("switch1", mgl32.Vec3{1.2, 0, -5})
	ray := forwardRay()

	_, ok := Spheres(ray, []*scene.Node{n}, 1, DefaultLimits)
	assert.False(t, ok, "plain sphere should miss")

	hit, ok := Spheres(ray, []*scene.Node{n}, 1.7, DefaultLimits)
	require.True(t, ok, "inflated sphere should hit")
	assert.Same(t, n, hit.Node)
}

func TestSpheresNearestWins(t *testing.T) {
	far := cubeAt("switch2", mgl32.Vec3{0, 0, -20})
	near := cubeAt("switch1", mgl32.Vec3{0, 0, -5})
	hit, ok := Spheres(forwardRay(), []*scene.Node{far, near, nil}, 1.7, DefaultLimits)
	require.True(t, ok)
	assert.Same(t, near, hit.Node)
}

func TestMeshesHitsTriangles(t *testing.T) {
	ground := scene.NewNode("ground")
	ground.Mesh = scene.CreatePlane(10)
	ground.SetPosition(mgl32.Vec3{0, -2, 0})

	down := Ray{Origin: mgl32.Vec3{1, 5, 1}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, ok := Meshes(down, []*scene.Node{ground}, Limits{Near: 0, Far: 100})
	require.True(t, ok)
	assert.InDelta(t, 7, hit.Distance, 1e-4)
	assert.InDelta(t, -2, hit.Point.Y(), 1e-4)

	outside := Ray{Origin: mgl32.Vec3{20, 5, 0}, Direction: mgl32.Vec3{0, -1, 0}}
	_, ok = Meshes(outside, []*scene.Node{ground}, Limits{Near: 0, Far: 100})
	assert.False(t, ok)
}

func TestAimRayUsesCenterWhenLocked(t *testing.T) {
	cam := scene.NewCamera(mgl32.DegToRad(60), 16.0/9.0, 0.1, 500)
	cam.SetPosition(mgl32.Vec3{0, 1, 0})

	locked := AimRay(cam, true, 10, 10, 1600, 900)
	assert.InDelta(t, 0, locked.Direction.Sub(cam.GetForward()).Len(), 1e-4)

	corner := AimRay(cam, false, 10, 10, 1600, 900)
	assert.Greater(t, corner.Direction.Y(), float32(0), "top-left cursor aims up")
	assert.Less(t, corner.Direction.X(), float32(0), "top-left cursor aims left")
}

func TestRayAABBOriginInside(t *testing.T) {
	box := scene.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	d, ok := RayAABB(forwardRay(), box)
	require.True(t, ok)
	assert.Equal(t, float32(0), d)
}
