package nav

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/platform"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// square is a flat floor at height y covering |x|, |z| <= half.
type square struct {
	half, y float32
}

func (s square) HitXZ(x, z float32) (mgl32.Vec3, bool) {
	if x < -s.half || x > s.half || z < -s.half || z > s.half {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{x, s.y, z}, true
}

func newWalker(ground Prober, pos mgl32.Vec3) *Movement {
	cam := scene.NewCamera(mgl32.DegToRad(75), 16.0/9, 0.1, 2000)
	cam.SetPosition(pos)
	m := NewMovement(cam, ground, Options{
		Speed:         10,
		RunMultiplier: 2,
		EyeHeight:     8.5,
		GroundFollow:  0.18,
		Sensitivity:   0.01,
	}, nil)
	m.SetPlaying(true)
	return m
}

func TestGroundProbesNavPlane(t *testing.T) {
	floor := scene.NewNode("navfloor")
	floor.Mesh = scene.CreatePlane(10)
	floor.SetPosition(mgl32.Vec3{0, 2, 0})

	g := NewGround([]*scene.Node{floor})
	hit, ok := g.HitXZ(1, -1.5)
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Y(), 1e-4)
	assert.InDelta(t, 1, hit.X(), 1e-4)

	_, ok = g.HitXZ(20, 0)
	assert.False(t, ok)

	_, ok = NewGround(nil).HitXZ(0, 0)
	assert.False(t, ok)
}

func TestGroundFollowsScaledNav(t *testing.T) {
	floor := scene.NewNode("navfloor")
	floor.Mesh = scene.CreatePlane(2)
	root := scene.NewNode("nav")
	root.AddChild(floor)
	root.SetScale(mgl32.Vec3{5, 5, 5})

	g := NewGround(root.Meshes())
	_, ok := g.HitXZ(4, 4)
	assert.True(t, ok, "scaled plane reaches 5 units out")
}

func TestMovementIdleWhenNotPlaying(t *testing.T) {
	m := newWalker(square{half: 50}, mgl32.Vec3{0, 8.5, 0})
	m.SetPlaying(false)
	m.Update(0.1, Intent{Forward: true})
	assert.Equal(t, mgl32.Vec3{0, 8.5, 0}, m.Camera.Position)

	m.Look(100, 0)
	assert.Zero(t, m.Camera.Yaw)
}

func TestMovementWalksForward(t *testing.T) {
	m := newWalker(square{half: 50}, mgl32.Vec3{0, 8.5, 0})
	m.Update(0.1, Intent{Forward: true})

	pos := m.Camera.Position
	assert.InDelta(t, 0, pos.X(), 1e-5)
	assert.InDelta(t, -1, pos.Z(), 1e-5)
	assert.InDelta(t, 8.5, pos.Y(), 1e-5)
}

func TestRunMultipliesSpeed(t *testing.T) {
	m := newWalker(square{half: 50}, mgl32.Vec3{0, 8.5, 0})
	m.Update(0.1, Intent{Right: true, Run: true})
	assert.InDelta(t, 2, m.Camera.Position.X(), 1e-5)
}

func TestOpposingKeysCancel(t *testing.T) {
	m := newWalker(square{half: 50}, mgl32.Vec3{1, 8.5, 1})
	m.Update(0.1, Intent{Forward: true, Back: true})
	assert.Equal(t, mgl32.Vec3{1, 8.5, 1}, m.Camera.Position)
}

func TestMovementSlidesAlongEdge(t *testing.T) {
	m := newWalker(square{half: 5}, mgl32.Vec3{4.5, 8.5, 0})
	m.Update(0.2, Intent{Forward: true, Right: true})

	d := float32(2 / math.Sqrt2)
	pos := m.Camera.Position
	assert.InDelta(t, 4.5, pos.X(), 1e-5, "x blocked by the edge")
	assert.InDelta(t, -d, pos.Z(), 1e-4, "z kept")
}

func TestMovementBlockedOnBothAxes(t *testing.T) {
	m := newWalker(square{half: 5}, mgl32.Vec3{4.9, 8.5, -4.9})
	m.Update(0.2, Intent{Forward: true, Right: true})
	pos := m.Camera.Position
	assert.InDelta(t, 4.9, pos.X(), 1e-5)
	assert.InDelta(t, -4.9, pos.Z(), 1e-5)
}

func TestGroundFollowEases(t *testing.T) {
	m := newWalker(square{half: 50, y: 10}, mgl32.Vec3{0, 8.5, 0})
	m.Update(0.016, Intent{})
	assert.InDelta(t, 8.5+10*0.18, m.Camera.Position.Y(), 1e-4)

	for i := 0; i < 200; i++ {
		m.Update(0.016, Intent{})
	}
	assert.InDelta(t, 18.5, m.Camera.Position.Y(), 1e-3)
}

func TestSpawn(t *testing.T) {
	m := newWalker(square{half: 5, y: 3}, mgl32.Vec3{})
	require.True(t, m.Spawn(1, 2))
	assert.Equal(t, mgl32.Vec3{1, 11.5, 2}, m.Camera.Position)

	assert.False(t, m.Spawn(100, 0))
	assert.Equal(t, mgl32.Vec3{1, 11.5, 2}, m.Camera.Position)
}

func TestLookTurnsCamera(t *testing.T) {
	m := newWalker(square{half: 5}, mgl32.Vec3{})
	m.Look(10, 0)
	assert.InDelta(t, -0.1, m.Camera.Yaw, 1e-6)
}

type keys map[int]bool

func (k keys) GetCursorPos() (float64, float64) { return 0, 0 }
func (k keys) IsKeyPressed(key int) bool        { return k[key] }
func (k keys) IsMouseButtonPressed(int) bool    { return false }

func TestIntentFromInput(t *testing.T) {
	src := keys{platform.KeyUp: true, platform.KeyA: true, platform.KeyLeftShift: true}
	im := platform.NewInputManager(src)
	im.Update()

	assert.Equal(t, Intent{Forward: true, Left: true, Run: true}, IntentFrom(im))
}
