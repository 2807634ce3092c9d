package finale

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/sceneindex"
)

func mesh(name string) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateCube(1)
	n.Material = scene.DefaultMaterial()
	return n
}

func TestArmLightsTargetsOnce(t *testing.T) {
	root := scene.NewNode("world")
	k1, k2, core := mesh("kant1"), mesh("Kant2"), mesh("hjerne")
	root.AddChild(k1)
	root.AddChild(k2)
	root.AddChild(core)
	idx := sceneindex.Build(root, sceneindex.DefaultTable(), nil)
	comp := bloom.New(root, nil, nil, nil)
	opts := DefaultOptions()
	f := New(idx.Groups(sceneindex.Finale), comp, opts, nil)

	f.Tick(1)
	assert.False(t, comp.Glowing(k1))
	assert.Equal(t, mgl32.QuatIdent(), k1.Transform.Rotation, "no spin before arming")

	f.Arm()
	assert.True(t, f.Armed())
	for _, n := range []*scene.Node{k1, k2} {
		assert.True(t, comp.Glowing(n))
		assert.Equal(t, opts.EdgeColor.Scale(opts.Intensity), comp.GlowColor(n))
	}
	assert.Equal(t, opts.CoreColor.Scale(opts.Intensity), comp.GlowColor(core))

	f.Tick(0.5)
	rot := k1.Transform.Rotation
	f.Arm()
	assert.Equal(t, rot, k1.Transform.Rotation)
	assert.NotEqual(t, mgl32.QuatIdent(), rot)
	assert.Equal(t, mgl32.QuatIdent(), core.Transform.Rotation, "core does not spin")
}

func TestMissingTargetsAreTolerated(t *testing.T) {
	f := New(nil, nil, DefaultOptions(), nil)
	assert.NotPanics(t, func() {
		f.Arm()
		f.Tick(0.1)
	})
	assert.True(t, f.Armed())
}
