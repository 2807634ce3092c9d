// Package finale is the one-shot scripted state entered once every switch
// is ON: the kant edges glow and spin and the core glows red.
package finale

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/sceneindex"
)

// Highlighter tags nodes for the bloom pass. *bloom.Compositor implements it.
type Highlighter interface {
	Mark(n *scene.Node, on bool)
	SetBoost(n *scene.Node, b bloom.Boost)
}

type Options struct {
	EdgeColor core.Color
	CoreColor core.Color
	Intensity float32
	Spin      float32 // rad/s for the edges once armed
}

func DefaultOptions() Options {
	return Options{
		EdgeColor: core.MustHex("#f59e0b"),
		CoreColor: core.MustHex("#ef4444"),
		Intensity: 1,
		Spin:      0.8,
	}
}

type Finale struct {
	opts  Options
	glow  Highlighter
	log   *zap.Logger
	edges []sceneindex.Group
	core  []sceneindex.Group
	armed bool
}

// New splits the finale groups into numbered edges (kant1, kant2, ...) and
// the unnumbered core (hjerne).
func New(groups []sceneindex.Group, glow Highlighter, opts Options, log *zap.Logger) *Finale {
	f := &Finale{opts: opts, glow: glow, log: logger.OrNop(log).Named("finale")}
	for _, g := range groups {
		if g.Number >= 1 && strings.HasPrefix(strings.ToLower(g.Owner.Name), "kant") {
			f.edges = append(f.edges, g)
		} else {
			f.core = append(f.core, g)
		}
	}
	if len(f.edges) == 0 {
		f.log.Warn("no edge targets found")
	}
	if len(f.core) == 0 {
		f.log.Warn("no core target found")
	}
	f.log.Info("discovered", zap.Int("edges", len(f.edges)), zap.Int("core", len(f.core)))
	return f
}

// Arm lights the finale. Calls after the first are no-ops.
func (f *Finale) Arm() {
	if f.armed {
		return
	}
	f.armed = true
	f.light(f.edges, f.opts.EdgeColor)
	f.light(f.core, f.opts.CoreColor)
	f.log.Info("armed")
}

func (f *Finale) light(groups []sceneindex.Group, c core.Color) {
	if f.glow == nil {
		return
	}
	b := bloom.Boost{Color: c, Intensity: f.opts.Intensity}
	for _, g := range groups {
		for _, n := range g.Nodes {
			f.glow.SetBoost(n, b)
			f.glow.Mark(n, true)
		}
	}
}

func (f *Finale) Armed() bool { return f.armed }

// Tick spins the edges while armed.
func (f *Finale) Tick(dt float32) {
	if !f.armed || dt <= 0 || f.opts.Spin == 0 {
		return
	}
	for _, g := range f.edges {
		g.Owner.RotateY(f.opts.Spin * dt)
	}
}
