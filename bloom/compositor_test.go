package bloom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// fakePipeline "renders" by reading the material each node carries at draw
// time. Each node is one pixel keyed by name.
type fakePipeline struct {
	root      *scene.Node
	bloom     map[string]core.Color
	base      map[string]core.Color
	final     map[string]core.Color
	params    Params
	w, h      int
	closed    int
	panicOnce bool
}

func newFake(root *scene.Node) *fakePipeline {
	return &fakePipeline{root: root}
}

func shade(m *scene.Material) core.Color {
	if m == nil {
		return core.ColorBlack
	}
	return m.Albedo.Add(m.EmissiveRadiance())
}

func (f *fakePipeline) draw() map[string]core.Color {
	out := make(map[string]core.Color)
	f.root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			out[n.Name] = shade(n.GetMaterial())
		}
	})
	return out
}

func (f *fakePipeline) RenderBloom() {
	if f.panicOnce {
		f.panicOnce = false
		panic("gpu lost")
	}
	f.bloom = f.draw()
}

func (f *fakePipeline) RenderComposite() {
	f.base = f.draw()
	f.final = make(map[string]core.Color, len(f.base))
	for k, v := range f.base {
		f.final[k] = v.Add(f.bloom[k])
	}
}

func (f *fakePipeline) Resize(w, h int)    { f.w, f.h = w, h }
func (f *fakePipeline) SetParams(p Params) { f.params = p }
func (f *fakePipeline) Close()             { f.closed++ }

func meshNode(name string, albedo core.Color) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateCube(1)
	n.Material = scene.NewMaterial(name, albedo)
	return n
}

func testScene() (*scene.Node, []*scene.Node) {
	root := scene.NewNode("world")
	a := meshNode("switch1", core.MustHex("#808080"))
	b := meshNode("crystal1", core.MustHex("#404040"))
	shared := scene.NewNode("group")
	c := meshNode("wall", core.ColorWhite)
	d := meshNode("floor", core.ColorWhite)
	d.Material = c.Material // shared material
	e := scene.NewNode("inherits")
	e.Mesh = scene.CreateCube(1)
	e.Mesh.Material = scene.DefaultMaterial() // node.Material stays nil
	shared.AddChild(c)
	shared.AddChild(d)
	root.AddChild(a)
	root.AddChild(b)
	root.AddChild(shared)
	root.AddChild(e)
	return root, []*scene.Node{a, b, c, d, e}
}

func snapshot(nodes []*scene.Node) []*scene.Material {
	out := make([]*scene.Material, len(nodes))
	for i, n := range nodes {
		out[i] = n.Material
	}
	return out
}

func newCompositor(t *testing.T, root *scene.Node) (*Compositor, *fakePipeline) {
	t.Helper()
	fake := newFake(root)
	c := New(root, func() (Pipeline, error) { return fake, nil }, nil, nil)
	require.False(t, c.Degraded())
	return c, fake
}

func TestRenderRestoresExactMaterialPointers(t *testing.T) {
	root, nodes := testScene()
	c, _ := newCompositor(t, root)
	c.Mark(nodes[0], true)
	c.SetBoost(nodes[0], Boost{Color: core.MustHex("#4ade80"), Intensity: 1.5})
	c.Mark(nodes[3], true)

	before := snapshot(nodes)
	for i := 0; i < 50; i++ {
		c.Render()
		after := snapshot(nodes)
		for j := range nodes {
			assert.Same(t, before[j], after[j], "node %s frame %d", nodes[j].Name, i)
		}
	}
	assert.Empty(t, c.saved)
	assert.Nil(t, nodes[4].Material)
}

func TestBloomPassBlacksOutNonGlowNodes(t *testing.T) {
	root, nodes := testScene()
	c, fake := newCompositor(t, root)
	c.Mark(nodes[0], true)
	c.SetBoost(nodes[0], Boost{Color: core.Color{R: 0.2, G: 0.4, B: 0.1, A: 1}, Intensity: 2})

	c.Render()

	assert.InDeltaSlice(t, []float32{0.4, 0.8, 0.2},
		[]float32{fake.bloom["switch1"].R, fake.bloom["switch1"].G, fake.bloom["switch1"].B}, 1e-6)
	for _, name := range []string{"crystal1", "wall", "floor", "inherits"} {
		assert.True(t, fake.bloom[name].IsBlack(), name)
	}
	// composite pass sees the real materials
	assert.Equal(t, shade(nodes[1].Material), fake.base["crystal1"])
}

func TestDefaultBoostAppliesWithoutOwnBoost(t *testing.T) {
	root, nodes := testScene()
	c, fake := newCompositor(t, root)
	c.SetDefaultBoost(Boost{Color: core.Color{R: 1, G: 0, B: 0, A: 1}, Intensity: 3})
	c.Mark(nodes[2], true)

	c.Render()
	assert.Equal(t, float32(3), fake.bloom["wall"].R)

	b, own := c.EffectiveBoost(nodes[2])
	assert.False(t, own)
	assert.Equal(t, float32(3), b.Intensity)

	c.SetBoost(nodes[2], Boost{Color: core.Color{R: 0, G: 1, B: 0, A: 1}, Intensity: 1})
	c.Render()
	assert.Equal(t, core.Color{R: 0, G: 1, B: 0, A: 1}, fake.bloom["wall"])
}

func TestBoostIsIdempotentAndSurvivesUnmark(t *testing.T) {
	root, nodes := testScene()
	c, fake := newCompositor(t, root)
	boost := Boost{Color: core.MustHex("#f59e0b"), Intensity: 1.5}

	c.Mark(nodes[0], true)
	c.SetBoost(nodes[0], boost)
	c.Render()
	once := fake.bloom["switch1"]

	c.SetBoost(nodes[0], boost)
	c.Mark(nodes[0], true)
	assert.True(t, c.Glowing(nodes[0]))
	c.Render()
	assert.Equal(t, once, fake.bloom["switch1"])

	c.Mark(nodes[0], false)
	c.Render()
	assert.True(t, fake.bloom["switch1"].IsBlack())
	got, own := c.EffectiveBoost(nodes[0])
	assert.True(t, own)
	assert.Equal(t, boost, got)

	c.Mark(nodes[0], true)
	c.Render()
	assert.Equal(t, once, fake.bloom["switch1"], "boost reapplied after re-mark")
}

func TestNoGlowNodesCompositeEqualsPlainRender(t *testing.T) {
	root, nodes := testScene()
	c, fake := newCompositor(t, root)
	before := snapshot(nodes)

	for i := 0; i < 1000; i++ {
		c.Render()
	}

	plain := fake.draw()
	assert.Equal(t, plain, fake.final)
	for k, v := range fake.bloom {
		assert.True(t, v.IsBlack(), k)
	}
	after := snapshot(nodes)
	for j := range nodes {
		assert.Same(t, before[j], after[j])
	}
}

func TestPanicInPipelineStillRestores(t *testing.T) {
	root, nodes := testScene()
	c, fake := newCompositor(t, root)
	fake.panicOnce = true
	before := snapshot(nodes)

	assert.Panics(t, c.Render)
	after := snapshot(nodes)
	for j := range nodes {
		assert.Same(t, before[j], after[j])
	}
	assert.NotPanics(t, c.Render)
}

func TestFactoryFailureDegradesToFallback(t *testing.T) {
	root, nodes := testScene()
	draws := 0
	c := New(root, func() (Pipeline, error) { return nil, errors.New("no float targets") },
		DrawerFunc(func() { draws++ }), nil)

	require.True(t, c.Degraded())
	c.Mark(nodes[0], true)
	c.Render()
	c.Render()
	assert.Equal(t, 2, draws)
	c.Resize(100, 100)
	c.Close()
}

func TestByNameIsCaseInsensitive(t *testing.T) {
	root, nodes := testScene()
	c, _ := newCompositor(t, root)

	assert.Equal(t, 1, c.MarkByName("SWITCH1", true))
	assert.True(t, c.Glowing(nodes[0]))
	assert.Equal(t, 1, c.SetBoostByName("Crystal1", Boost{Color: core.ColorWhite, Intensity: 4}))
	b, own := c.EffectiveBoost(nodes[1])
	assert.True(t, own)
	assert.Equal(t, float32(4), b.Intensity)
	assert.Zero(t, c.MarkByName("missing", true))
}

func TestResizeAndParamsForwarded(t *testing.T) {
	root, _ := testScene()
	c, fake := newCompositor(t, root)

	c.Resize(1920, 1080)
	assert.Equal(t, 1920, fake.w)
	assert.Equal(t, 1080, fake.h)

	c.Resize(0, 0) // minimized
	assert.Equal(t, 1920, fake.w)

	p := c.Params()
	p.Strength = 2.5
	c.SetParams(p)
	assert.Equal(t, float32(2.5), fake.params.Strength)

	c.Close()
	c.Close()
	assert.Equal(t, 1, fake.closed)
	fake.bloom = nil
	c.Render()
	assert.Nil(t, fake.bloom, "render after close is a no-op")
}
