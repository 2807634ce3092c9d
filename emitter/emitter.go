// Package emitter drives the switch-linked visuals: crystals, rings, rotors
// and edge glows. Each entry is a numbered group of meshes that is either
// lit and spinning or dark and still.
package emitter

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/sceneindex"
)

// entry is one id. Several groups may share a number, so it can have more
// than one owner.
type entry struct {
	owners []*scene.Node
	nodes  []*scene.Node
	on     bool
}

type Emitter struct {
	kind    string
	effect  Effect
	spin    float32
	log     *zap.Logger
	entries map[int]*entry
	loose   []*entry // groups whose name carries no number
}

// New maps each numbered group to id number-1 and shows it off. spin is the
// angular rate in rad/s applied to the owner of every ON entry; 0 disables.
func New(kind string, groups []sceneindex.Group, effect Effect, spin float32, log *zap.Logger) *Emitter {
	e := &Emitter{
		kind:    kind,
		effect:  effect,
		spin:    spin,
		log:     logger.OrNop(log).Named(kind),
		entries: make(map[int]*entry),
	}
	for _, g := range groups {
		en := &entry{owners: []*scene.Node{g.Owner}, nodes: g.Nodes}
		for _, n := range g.Nodes {
			effect.Prepare(n)
			effect.Apply(n, false)
		}
		if g.Number < 1 {
			e.loose = append(e.loose, en)
			continue
		}
		id := g.Number - 1
		if prev, ok := e.entries[id]; ok {
			e.log.Info("groups share an id", zap.Int("id", id),
				zap.String("node", g.Owner.Name), g.Owner.LogField(),
				zap.String("first", prev.owners[0].Name))
			prev.owners = append(prev.owners, g.Owner)
			prev.nodes = append(prev.nodes, en.nodes...)
			continue
		}
		e.entries[id] = en
	}
	e.log.Info("discovered", zap.Ints("ids", e.IDs()), zap.Int("unnumbered", len(e.loose)))
	return e
}

func (e *Emitter) Kind() string { return e.kind }

// IDs returns the known ids in ascending order.
func (e *Emitter) IDs() []int {
	ids := make([]int, 0, len(e.entries))
	for id := range e.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Has reports whether id has an entry.
func (e *Emitter) Has(id int) bool {
	_, ok := e.entries[id]
	return ok
}

// SetOnByID switches one entry. Unknown ids are logged and ignored.
func (e *Emitter) SetOnByID(id int, on bool) bool {
	en, ok := e.entries[id]
	if !ok {
		e.log.Warn("unknown id", zap.Int("id", id))
		return false
	}
	e.set(en, on)
	return true
}

// SetUnnumberedOn switches every group without a number.
func (e *Emitter) SetUnnumberedOn(on bool) {
	for _, en := range e.loose {
		e.set(en, on)
	}
}

func (e *Emitter) set(en *entry, on bool) {
	en.on = on
	for _, n := range en.nodes {
		e.effect.Apply(n, on)
	}
}

func (e *Emitter) IsOn(id int) bool {
	en, ok := e.entries[id]
	return ok && en.on
}

// Tick spins the owners of ON entries by spin*dt around Y.
func (e *Emitter) Tick(dt float32) {
	if e.spin == 0 || dt <= 0 {
		return
	}
	for _, en := range e.entries {
		e.spinEntry(en, dt)
	}
	for _, en := range e.loose {
		e.spinEntry(en, dt)
	}
}

func (e *Emitter) spinEntry(en *entry, dt float32) {
	if !en.on {
		return
	}
	for _, o := range en.owners {
		o.RotateY(e.spin * dt)
	}
}
