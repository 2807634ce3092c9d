package emitter

import (
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// Highlighter tags nodes for the bloom pass. *bloom.Compositor implements it.
type Highlighter interface {
	Mark(n *scene.Node, on bool)
	SetBoost(n *scene.Node, b bloom.Boost)
}

// Effect is the visual an emitter switches on and off.
type Effect interface {
	// Prepare runs once per mesh at discovery.
	Prepare(n *scene.Node)
	Apply(n *scene.Node, on bool)
}

// Emissive lights the mesh's own material.
type Emissive struct {
	Color     core.Color
	Intensity float32
}

// Prepare gives the mesh a private Lit material so changing its emission
// never touches meshes sharing the loaded one. Unlit materials are converted.
func (e Emissive) Prepare(n *scene.Node) {
	m := n.GetMaterial()
	if m == nil {
		n.Material = scene.NewMaterial("emitter", core.MustHex("#9a9a9a"))
		return
	}
	if m.Kind == scene.Unlit {
		n.Material = m.ToLit()
		return
	}
	n.Material = m.Clone()
}

func (e Emissive) Apply(n *scene.Node, on bool) {
	if n.Material == nil {
		return
	}
	if on {
		n.Material.SetEmissive(e.Color, e.Intensity)
	} else {
		n.Material.SetEmissive(core.ColorBlack, 0)
	}
}

// Glow tags the mesh for bloom with a fixed boost.
type Glow struct {
	Target Highlighter
	Boost  bloom.Boost
}

func (g Glow) Prepare(n *scene.Node) {
	if g.Target != nil {
		g.Target.Mark(n, false)
	}
}

func (g Glow) Apply(n *scene.Node, on bool) {
	if g.Target == nil {
		return
	}
	if on {
		g.Target.SetBoost(n, g.Boost)
	}
	g.Target.Mark(n, on)
}

// Combined applies every effect in order.
type Combined []Effect

func (c Combined) Prepare(n *scene.Node) {
	for _, e := range c {
		e.Prepare(n)
	}
}

func (c Combined) Apply(n *scene.Node, on bool) {
	for _, e := range c {
		e.Apply(n, on)
	}
}
