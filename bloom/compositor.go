// Package bloom renders selected nodes with a glow. Every frame the scene is
// drawn twice: once with non-glowing nodes blacked out and glowing nodes
// painted in their boost color (blurred into a bloom texture), and once
// normally. The two are added together on screen.
package bloom

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// Boost is the color a glowing node is painted with in the bloom pass.
type Boost struct {
	Color     core.Color
	Intensity float32
}

// Premultiplied is the bloom-pass color: Color scaled by Intensity.
func (b Boost) Premultiplied() core.Color {
	return b.Color.Scale(b.Intensity)
}

// Params tune the blur chain.
type Params struct {
	Threshold float32 // luminance below which the bright pass drops pixels
	Strength  float32 // bloom output multiplier
	Radius    float32 // blur spread, scales the sample step
	Exposure  float32 // applied to the composite
}

func DefaultParams() Params {
	return Params{Threshold: 0.5, Strength: 1, Radius: 0.2, Exposure: 1}
}

// Pipeline draws the scene graph with whatever material each node carries
// at the time of the call.
type Pipeline interface {
	// RenderBloom draws the scene into the bloom target and blurs it.
	RenderBloom()
	// RenderComposite draws the scene into the base target and presents
	// base + bloom.
	RenderComposite()
	Resize(width, height int)
	SetParams(Params)
	Close()
}

// PipelineFactory builds the GPU pipeline. An error puts the compositor in
// degraded mode.
type PipelineFactory func() (Pipeline, error)

// Drawer draws the scene in a single plain pass.
type Drawer interface {
	Draw()
}

// DrawerFunc adapts a function to Drawer.
type DrawerFunc func()

func (f DrawerFunc) Draw() { f() }

// Compositor owns the glow state of the nodes under root. Not safe for
// concurrent use; call it from the frame loop only.
type Compositor struct {
	root     *scene.Node
	pipe     Pipeline
	fallback Drawer
	log      *zap.Logger

	boosts    map[*scene.Node]Boost
	def       Boost
	boostMats map[*scene.Node]*scene.Material
	saved     map[*scene.Node]*scene.Material
	dark      *scene.Material
	params    Params

	width, height int
	closed        bool
}

// New builds the compositor. If factory is nil or fails, Render draws through
// fallback with no glow.
func New(root *scene.Node, factory PipelineFactory, fallback Drawer, log *zap.Logger) *Compositor {
	log = logger.OrNop(log).Named("bloom")
	c := &Compositor{
		root:      root,
		fallback:  fallback,
		log:       log,
		boosts:    make(map[*scene.Node]Boost),
		def:       Boost{Color: core.ColorWhite, Intensity: 2},
		boostMats: make(map[*scene.Node]*scene.Material),
		saved:     make(map[*scene.Node]*scene.Material),
		dark:      scene.NewUnlitMaterial("bloom-dark", core.ColorBlack),
		params:    DefaultParams(),
	}
	if factory == nil {
		log.Warn("no bloom pipeline, rendering without glow")
		return c
	}
	pipe, err := factory()
	if err != nil {
		log.Error("bloom pipeline setup failed, rendering without glow", zap.Error(err))
		return c
	}
	c.pipe = pipe
	c.pipe.SetParams(c.params)
	return c
}

// Degraded reports whether the compositor fell back to plain rendering.
func (c *Compositor) Degraded() bool {
	return c.pipe == nil
}

// Mark sets or clears the glow tag. Boosts are left alone.
func (c *Compositor) Mark(n *scene.Node, on bool) {
	if n == nil {
		return
	}
	if on {
		n.Layers |= scene.LayerBloom
	} else {
		n.Layers &^= scene.LayerBloom
	}
}

// SetBoost sets the node's own boost. It does not change the glow tag and
// outlives Mark(n, false).
func (c *Compositor) SetBoost(n *scene.Node, b Boost) {
	if n == nil {
		return
	}
	c.boosts[n] = b
}

// SetDefaultBoost sets the boost of glowing nodes without one of their own.
func (c *Compositor) SetDefaultBoost(b Boost) {
	c.def = b
}

// MarkByName tags every mesh under root named name, ignoring case, and
// returns how many were found.
func (c *Compositor) MarkByName(name string, on bool) int {
	nodes := c.byName(name)
	for _, n := range nodes {
		c.Mark(n, on)
	}
	return len(nodes)
}

// SetBoostByName boosts every mesh under root named name, ignoring case.
func (c *Compositor) SetBoostByName(name string, b Boost) int {
	nodes := c.byName(name)
	for _, n := range nodes {
		c.SetBoost(n, b)
	}
	return len(nodes)
}

func (c *Compositor) byName(name string) []*scene.Node {
	if c.root == nil {
		return nil
	}
	nodes := c.root.FindAllFold(strings.TrimSpace(name))
	if len(nodes) == 0 {
		c.log.Warn("no mesh with that name", zap.String("node", name))
	}
	for _, n := range nodes {
		c.log.Debug("matched by name", zap.String("node", n.Name), n.LogField())
	}
	return nodes
}

func (c *Compositor) SetParams(p Params) {
	c.params = p
	if c.pipe != nil {
		c.pipe.SetParams(p)
	}
}

func (c *Compositor) Params() Params {
	return c.params
}

// Glowing reports the node's glow tag.
func (c *Compositor) Glowing(n *scene.Node) bool {
	return n != nil && n.Layers.Has(scene.LayerBloom)
}

// EffectiveBoost returns the boost the bloom pass would use for n, and
// whether it is the node's own.
func (c *Compositor) EffectiveBoost(n *scene.Node) (Boost, bool) {
	if b, ok := c.boosts[n]; ok {
		return b, true
	}
	return c.def, false
}

// Render draws one frame. The material of every node is the same pointer
// before and after the call.
func (c *Compositor) Render() {
	if c.closed {
		return
	}
	if c.pipe == nil {
		if c.fallback != nil {
			c.fallback.Draw()
		}
		return
	}
	c.bloomPass()
	c.pipe.RenderComposite()
}

func (c *Compositor) bloomPass() {
	defer c.restore()
	c.swap()
	c.pipe.RenderBloom()
}

// ── Material swap ─────────────────────────────────────────────────────────────

func (c *Compositor) swap() {
	if c.root == nil {
		return
	}
	c.root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		c.saved[n] = n.Material
		if !n.Layers.Has(scene.LayerBloom) {
			n.Material = c.dark
			return
		}
		n.Material = c.glowMaterial(n)
	})
}

// glowMaterial returns the node's cached bright material, synced to the
// current effective boost.
func (c *Compositor) glowMaterial(n *scene.Node) *scene.Material {
	b, _ := c.EffectiveBoost(n)
	col := b.Premultiplied()
	col.A = 1
	m, ok := c.boostMats[n]
	if !ok {
		m = scene.NewUnlitMaterial("bloom-boost:"+n.Name, col)
		c.boostMats[n] = m
		return m
	}
	m.Albedo = col
	return m
}

func (c *Compositor) restore() {
	for n, m := range c.saved {
		n.Material = m
		delete(c.saved, n)
	}
}

// GlowColor is the bloom-pass color the node would be drawn with.
func (c *Compositor) GlowColor(n *scene.Node) core.Color {
	if !c.Glowing(n) {
		return core.ColorBlack
	}
	b, _ := c.EffectiveBoost(n)
	return b.Premultiplied()
}

// Resize keeps both render targets at the framebuffer's pixel size.
func (c *Compositor) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	if c.pipe != nil {
		c.pipe.Resize(width, height)
	}
}

// Close releases the pipeline. Render is a no-op afterwards.
func (c *Compositor) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.pipe != nil {
		c.pipe.Close()
	}
}
