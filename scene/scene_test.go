package scene

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

func TestUnlitRejectsEmission(t *testing.T) {
	m := NewUnlitMaterial("flat", core.ColorWhite)
	assert.False(t, m.SetEmissive(core.ColorWhite, 2))
	assert.True(t, m.EmissiveRadiance().IsBlack())

	lit := m.ToLit()
	assert.NotSame(t, m, lit)
	assert.Equal(t, Lit, lit.Kind)
	assert.Equal(t, Unlit, m.Kind)
	require.True(t, lit.SetEmissive(core.Color{R: 1, G: 0.5, B: 0, A: 1}, 2))
	assert.Equal(t, core.Color{R: 2, G: 1, B: 0, A: 1}, lit.EmissiveRadiance())
}

func TestNodeMaterialFallsBackToMesh(t *testing.T) {
	n := NewNode("a")
	assert.Nil(t, n.GetMaterial())
	n.Mesh = CreateCube(1)
	shared := DefaultMaterial()
	n.Mesh.Material = shared
	assert.Same(t, shared, n.GetMaterial())

	own := NewMaterial("own", core.ColorBlack)
	n.Material = own
	assert.Same(t, own, n.GetMaterial())
}

func TestWorldMatrixFollowsParent(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	child.SetPosition(mgl32.Vec3{1, 0, 0})
	root.AddChild(child)

	root.SetScale(mgl32.Vec3{5, 5, 5})
	assert.InDelta(t, 5, child.WorldPosition().X(), 1e-5)

	root.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	p := child.WorldPosition()
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, -5, p.Z(), 1e-4)
}

func TestLogFieldTellsSameNamesApart(t *testing.T) {
	a, b := NewNode("Cube.001"), NewNode("Cube.001")
	fa, fb := a.LogField(), b.LogField()
	assert.Equal(t, "node_id", fa.Key)
	assert.Equal(t, a.ID.String(), fa.Interface.(fmt.Stringer).String())
	assert.NotEqual(t, fa.Interface.(fmt.Stringer).String(), fb.Interface.(fmt.Stringer).String())
}

func TestReparentMovesChild(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	c := NewNode("c")
	a.AddChild(c)
	b.AddChild(c)
	assert.Empty(t, a.Children)
	assert.Same(t, b, c.Parent)
}

func TestFindAllFoldMatchesMeshesOnly(t *testing.T) {
	root := NewNode("world")
	m := NewNode("Switch1")
	m.Mesh = CreateCube(1)
	root.AddChild(m)
	root.AddChild(NewNode("switch1"))

	got := root.FindAllFold("SWITCH1")
	require.Len(t, got, 1)
	assert.Same(t, m, got[0])
	assert.Len(t, root.Meshes(), 1)
}

func TestCameraFlatAxesIgnorePitch(t *testing.T) {
	cam := NewCamera(mgl32.DegToRad(75), 1, 0.1, 100)
	cam.SetYawPitch(0, 0.7)
	assert.InDelta(t, -1, cam.FlatForward().Z(), 1e-6)
	assert.InDelta(t, 1, cam.FlatRight().X(), 1e-6)

	cam.Look(0, 10)
	assert.Less(t, cam.Pitch, float32(1.5708))
}

func TestFrustumCullsBehindCamera(t *testing.T) {
	cam := NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	f := FrustumFromVP(cam.GetViewProjectionMatrix())
	cube := CreateCube(1)

	front := ComputeAABB(cube, mgl32.Translate3D(0, 0, -10))
	behind := ComputeAABB(cube, mgl32.Translate3D(0, 0, 10))
	assert.True(t, front.IntersectsFrustum(&f))
	assert.False(t, behind.IntersectsFrustum(&f))
}
