// Package sceneindex classifies the nodes of a loaded scene graph into
// semantic types by name.
package sceneindex

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// MaxAncestorDepth bounds the walk up the graph when a node's own name does
// not match any rule.
const MaxAncestorDepth = 16

type Type string

const (
	Switch        Type = "switch"
	Crystal       Type = "crystal"
	Ring          Type = "ring"
	Top           Type = "top"
	Bottom        Type = "bottom"
	Edge          Type = "edge"
	Finale        Type = "finale"
	RootStructure Type = "root-structure"
	BaseStructure Type = "base-structure"
)

// Rule routes matching names to a type. Neutralize clears baked-in emission
// on matched nodes so glow only comes from the bloom pass.
type Rule struct {
	Type       Type
	Match      Matcher
	Neutralize bool
}

// Table is evaluated in order; the first matching rule wins.
type Table []Rule

// DefaultTable returns the routing used by the installation's assets.
func DefaultTable() Table {
	return Table{
		{Type: Switch, Match: Numbered("switch"), Neutralize: true},
		{Type: Crystal, Match: Numbered("crystal"), Neutralize: true},
		{Type: Ring, Match: Numbered("rund", "ring"), Neutralize: true},
		{Type: Top, Match: Numbered("top"), Neutralize: true},
		{Type: Bottom, Match: Numbered("bottom"), Neutralize: true},
		{Type: Edge, Match: Any(Numbered("around"), Exact("kantout")), Neutralize: true},
		{Type: Finale, Match: Any(Exact("hjerne", "finale"), Numbered("kant")), Neutralize: true},
		{Type: RootStructure, Match: Prefix("root")},
		{Type: BaseStructure, Match: Prefix("base")},
	}
}

// Entry is one drawable node classified under a type. Owner is the node whose
// name matched: the node itself or an ancestor group.
type Entry struct {
	Node   *scene.Node
	Owner  *scene.Node
	Type   Type
	Number int // trailing number of Owner's name, -1 if none
}

// Group collects the entries sharing one owner.
type Group struct {
	Owner  *scene.Node
	Number int
	Nodes  []*scene.Node
}

// Index holds weak references into a scene graph it does not own.
type Index struct {
	byType map[Type][]Entry
}

// Build classifies every mesh node under root in a single traversal.
func Build(root *scene.Node, table Table, log *zap.Logger) *Index {
	log = logger.OrNop(log).Named("sceneindex")
	idx := &Index{byType: make(map[Type][]Entry)}
	if root == nil {
		return idx
	}

	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		rule, owner, ok := classify(n, root, table)
		if !ok {
			return
		}
		if rule.Neutralize {
			neutralize(n)
		}
		idx.byType[rule.Type] = append(idx.byType[rule.Type], Entry{
			Node:   n,
			Owner:  owner,
			Type:   rule.Type,
			Number: TrailingNumber(strings.ToLower(owner.Name)),
		})
	})

	for t, es := range idx.byType {
		log.Debug("classified", zap.String("type", string(t)), zap.Int("nodes", len(es)))
	}
	return idx
}

// classify tries the node's own name, then its ancestors below top.
func classify(n, top *scene.Node, table Table) (Rule, *scene.Node, bool) {
	cur := n
	for depth := 0; cur != nil && depth <= MaxAncestorDepth; depth++ {
		if cur == top && cur != n {
			break
		}
		name := strings.ToLower(cur.Name)
		for _, r := range table {
			if r.Match(name) {
				return r, cur, true
			}
		}
		cur = cur.Parent
	}
	return Rule{}, nil, false
}

// neutralize gives the node a private copy of its material with emission
// cleared, leaving any other user of the original material untouched.
func neutralize(n *scene.Node) {
	m := n.GetMaterial()
	if !m.SupportsEmissive() {
		return
	}
	if m.Emissive.IsBlack() && m.EmissiveIntensity == 0 {
		return
	}
	c := m.Clone()
	c.SetEmissive(core.ColorBlack, 0)
	n.Material = c
}

// Entries returns the entries of a type in traversal order.
func (idx *Index) Entries(t Type) []Entry {
	return idx.byType[t]
}

// Nodes returns the drawable nodes of a type in traversal order.
func (idx *Index) Nodes(t Type) []*scene.Node {
	es := idx.byType[t]
	out := make([]*scene.Node, len(es))
	for i, e := range es {
		out[i] = e.Node
	}
	return out
}

// Count returns how many drawable nodes were classified under t.
func (idx *Index) Count(t Type) int {
	return len(idx.byType[t])
}

// Groups returns one group per owner, ordered by natural name order.
func (idx *Index) Groups(t Type) []Group {
	var out []Group
	pos := make(map[*scene.Node]int)
	for _, e := range idx.byType[t] {
		i, ok := pos[e.Owner]
		if !ok {
			i = len(out)
			pos[e.Owner] = i
			out = append(out, Group{Owner: e.Owner, Number: e.Number})
		}
		out[i].Nodes = append(out[i].Nodes, e.Node)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return NaturalLess(out[a].Owner.Name, out[b].Owner.Name)
	})
	return out
}

// Numbered maps 0-based ids (name number minus one) to the groups carrying
// that number, in natural name order. Groups whose owner carries no number
// are left out.
func (idx *Index) Numbered(t Type) map[int][]Group {
	out := make(map[int][]Group)
	for _, g := range idx.Groups(t) {
		if g.Number < 1 {
			continue
		}
		out[g.Number-1] = append(out[g.Number-1], g)
	}
	return out
}

// Find returns the first group of t whose owner name equals name, ignoring case.
func (idx *Index) Find(t Type, name string) (Group, bool) {
	for _, g := range idx.Groups(t) {
		if strings.EqualFold(g.Owner.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}
