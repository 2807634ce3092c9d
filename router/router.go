// Package router owns the switch entities: picking, hover feedback, the
// ON/OFF toggle and the all-on completion trigger.
package router

import (
	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/pick"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/sceneindex"
)

// Highlighter paints switch feedback. *bloom.Compositor implements it.
type Highlighter interface {
	Mark(n *scene.Node, on bool)
	SetBoost(n *scene.Node, b bloom.Boost)
}

type Options struct {
	HoverColor    core.Color
	OnColor       core.Color
	Intensity     float32
	PickInflation float32
	Limits        pick.Limits

	// Rearm lets OnAllOn fire again after a switch has gone OFF. When false
	// the trigger fires at most once per session.
	Rearm bool
}

func DefaultOptions() Options {
	return Options{
		HoverColor:    core.MustHex("#f59e0b"),
		OnColor:       core.MustHex("#4ade80"),
		Intensity:     1.5,
		PickInflation: 1.7,
		Limits:        pick.DefaultLimits,
	}
}

// Switch is one toggleable entity. Nodes holds every mesh of the switch;
// Node is the group owner.
type Switch struct {
	ID    int
	Node  *scene.Node
	Nodes []*scene.Node
	On    bool
}

type Router struct {
	opts     Options
	glow     Highlighter
	log      *zap.Logger
	switches []*Switch
	byNode   map[*scene.Node]*Switch
	pickable []*scene.Node
	hovered  *Switch
	fired    bool

	// OnToggle is the single fan-out point, called once per toggle after the
	// switch's own visual is updated.
	OnToggle func(id int, on bool)

	// OnAllOn is called when every switch becomes ON.
	OnAllOn func()

	// OnHover is called when the hovered switch changes; id is -1 for none.
	OnHover func(id int)
}

// New assigns dense ids 0..N-1 to groups in the given order and shows every
// switch OFF.
func New(groups []sceneindex.Group, glow Highlighter, opts Options, log *zap.Logger) *Router {
	r := &Router{
		opts:   opts,
		glow:   glow,
		log:    logger.OrNop(log).Named("router"),
		byNode: make(map[*scene.Node]*Switch),
	}
	for i, g := range groups {
		s := &Switch{ID: i, Node: g.Owner, Nodes: g.Nodes}
		r.switches = append(r.switches, s)
		r.log.Debug("switch", zap.Int("id", i), zap.String("node", g.Owner.Name), g.Owner.LogField())
		for _, n := range g.Nodes {
			r.byNode[n] = s
			r.pickable = append(r.pickable, n)
		}
		r.setVisual(s, false)
	}
	if len(r.switches) == 0 {
		r.log.Warn("no switches found")
	}
	return r
}

func (r *Router) Count() int { return len(r.switches) }

// Switch returns the switch with id, or nil.
func (r *Router) Switch(id int) *Switch {
	if id < 0 || id >= len(r.switches) {
		return nil
	}
	return r.switches[id]
}

// IsOn reports the state of a switch; unknown ids report false.
func (r *Router) IsOn(id int) bool {
	s := r.Switch(id)
	return s != nil && s.On
}

// AllOn reports whether every switch is ON. It is false with no switches.
func (r *Router) AllOn() bool {
	if len(r.switches) == 0 {
		return false
	}
	for _, s := range r.switches {
		if !s.On {
			return false
		}
	}
	return true
}

// Fired reports whether OnAllOn has fired and is not re-armed.
func (r *Router) Fired() bool { return r.fired }

// ToggleByID flips a switch. Unknown ids are logged and ignored.
func (r *Router) ToggleByID(id int) bool {
	s := r.Switch(id)
	if s == nil {
		r.log.Warn("toggle of unknown switch", zap.Int("id", id))
		return false
	}
	r.toggle(s)
	return true
}

func (r *Router) toggle(s *Switch) {
	s.On = !s.On
	if r.hovered == s {
		r.hovered = nil
	}
	r.setVisual(s, false)
	r.log.Debug("toggle", zap.Int("id", s.ID), s.Node.LogField(), zap.Bool("on", s.On))
	if r.OnToggle != nil {
		r.OnToggle(s.ID, s.On)
	}
	r.checkAllOn()
}

// checkAllOn fires on the rising edge of the all-on condition.
func (r *Router) checkAllOn() {
	all := r.AllOn()
	switch {
	case all && !r.fired:
		r.fired = true
		r.log.Info("all switches on")
		if r.OnAllOn != nil {
			r.OnAllOn()
		}
	case !all && r.fired && r.opts.Rearm:
		r.fired = false
	}
}

// Pick returns the nearest switch along ray.
func (r *Router) Pick(ray pick.Ray) (*Switch, bool) {
	hit, ok := pick.Spheres(ray, r.pickable, r.opts.PickInflation, r.opts.Limits)
	if !ok {
		return nil, false
	}
	s, ok := r.byNode[hit.Node]
	return s, ok
}

// PointerMove updates hover feedback for the switch under ray.
func (r *Router) PointerMove(ray pick.Ray) {
	s, _ := r.Pick(ray)
	if s == r.hovered {
		return
	}
	if prev := r.hovered; prev != nil {
		r.setVisual(prev, false)
	}
	r.hovered = s
	id := -1
	if s != nil {
		r.setVisual(s, true)
		id = s.ID
	}
	if r.OnHover != nil {
		r.OnHover(id)
	}
}

// PointerDown toggles the switch under ray and returns its id.
func (r *Router) PointerDown(ray pick.Ray) (int, bool) {
	s, ok := r.Pick(ray)
	if !ok {
		return -1, false
	}
	r.toggle(s)
	return s.ID, true
}

// Hovered returns the id of the hovered switch, or -1.
func (r *Router) Hovered() int {
	if r.hovered == nil {
		return -1
	}
	return r.hovered.ID
}

// setVisual shows ON, hover (only while OFF) or nothing.
func (r *Router) setVisual(s *Switch, hovering bool) {
	if r.glow == nil {
		return
	}
	switch {
	case s.On:
		r.markOn(s, r.opts.OnColor)
	case hovering:
		r.markOn(s, r.opts.HoverColor)
	default:
		for _, n := range s.Nodes {
			r.glow.Mark(n, false)
		}
	}
}

func (r *Router) markOn(s *Switch, c core.Color) {
	b := bloom.Boost{Color: c, Intensity: r.opts.Intensity}
	for _, n := range s.Nodes {
		r.glow.SetBoost(n, b)
		r.glow.Mark(n, true)
	}
}
