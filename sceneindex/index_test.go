package sceneindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

func mesh(name string) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateCube(1)
	n.Material = scene.DefaultMaterial()
	return n
}

func group(name string, children ...*scene.Node) *scene.Node {
	g := scene.NewNode(name)
	for _, c := range children {
		g.AddChild(c)
	}
	return g
}

func names(nodes []*scene.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuildClassifiesByOwnName(t *testing.T) {
	root := group("world",
		mesh("Switch2"), mesh("switch1"), mesh("Crystal1"), mesh("rund3"),
		mesh("around1"), mesh("KantOut"), mesh("hjerne"), mesh("kant2"),
		mesh("Plane.004"),
	)
	idx := Build(root, DefaultTable(), nil)

	assert.ElementsMatch(t, []string{"Switch2", "switch1"}, names(idx.Nodes(Switch)))
	assert.Equal(t, []string{"Crystal1"}, names(idx.Nodes(Crystal)))
	assert.Equal(t, []string{"rund3"}, names(idx.Nodes(Ring)))
	assert.ElementsMatch(t, []string{"around1", "KantOut"}, names(idx.Nodes(Edge)))
	assert.ElementsMatch(t, []string{"hjerne", "kant2"}, names(idx.Nodes(Finale)))
	assert.Equal(t, 0, idx.Count(RootStructure))
}

func TestUnmatchedNamesAreExcluded(t *testing.T) {
	root := group("world", mesh("Plane.004"), mesh("switch"), mesh("switchA"))
	idx := Build(root, DefaultTable(), nil)
	for _, typ := range []Type{Switch, Crystal, Ring, Top, Bottom, Edge, Finale, RootStructure, BaseStructure} {
		assert.Zero(t, idx.Count(typ), typ)
	}
}

func TestAncestorGroupRoutesDescendants(t *testing.T) {
	blade := mesh("Cylinder.002")
	hub := mesh("Cube.010")
	top := group("top3", group("pivot", blade), hub)
	root := group("world", top)

	idx := Build(root, DefaultTable(), nil)
	require.Equal(t, 2, idx.Count(Top))
	for _, e := range idx.Entries(Top) {
		assert.Same(t, top, e.Owner)
		assert.Equal(t, 3, e.Number)
	}

	gs, ok := idx.Numbered(Top)[2]
	require.True(t, ok, "top3 maps to id 2")
	require.Len(t, gs, 1)
	assert.ElementsMatch(t, []*scene.Node{blade, hub}, gs[0].Nodes)
}

func TestNumberedKeepsEveryOwnerOfAnID(t *testing.T) {
	rund := mesh("rund1")
	ring := mesh("ring1")
	blade := mesh("Torus")
	root := group("world", rund, group("ring01", blade), ring)

	gs := Build(root, DefaultTable(), nil).Numbered(Ring)[0]
	require.Len(t, gs, 3)
	owners := make([]string, len(gs))
	for i, g := range gs {
		owners[i] = g.Owner.Name
	}
	assert.ElementsMatch(t, []string{"rund1", "ring1", "ring01"}, owners)
}

func TestOwnNameWinsOverAncestor(t *testing.T) {
	c := mesh("crystal2")
	root := group("world", group("top1", c))
	idx := Build(root, DefaultTable(), nil)
	assert.Equal(t, 1, idx.Count(Crystal))
	assert.Zero(t, idx.Count(Top))
}

func TestFirstRuleWins(t *testing.T) {
	table := Table{
		{Type: "a", Match: Prefix("sw")},
		{Type: Switch, Match: Numbered("switch")},
	}
	idx := Build(group("world", mesh("switch1")), table, nil)
	assert.Equal(t, 1, idx.Count("a"))
	assert.Zero(t, idx.Count(Switch))
}

func TestIndexedRootDoesNotRoute(t *testing.T) {
	// The root itself is not a routing group for its descendants.
	root := group("root", mesh("Plane"))
	idx := Build(root, DefaultTable(), nil)
	assert.Zero(t, idx.Count(RootStructure))

	root = group("world", group("RootBeam", mesh("Plane")))
	idx = Build(root, DefaultTable(), nil)
	assert.Equal(t, 1, idx.Count(RootStructure))
}

func TestAncestorWalkIsBounded(t *testing.T) {
	leaf := mesh("leaf")
	var cur = leaf
	for i := 0; i < MaxAncestorDepth+4; i++ {
		cur = group("g", cur)
	}
	top := group("switch9", cur)
	idx := Build(group("world", top), DefaultTable(), nil)
	assert.Zero(t, idx.Count(Switch))
}

func TestNeutralizeClearsEmissionOnPrivateCopy(t *testing.T) {
	shared := scene.DefaultMaterial()
	shared.SetEmissive(core.MustHex("#ff0000"), 3)

	crystal := mesh("crystal1")
	crystal.Material = shared
	wall := mesh("wall")
	wall.Material = shared

	Build(group("world", crystal, wall), DefaultTable(), nil)

	assert.NotSame(t, shared, crystal.Material)
	assert.True(t, crystal.Material.Emissive.IsBlack())
	assert.Zero(t, crystal.Material.EmissiveIntensity)
	assert.Same(t, shared, wall.Material, "unmatched nodes keep the shared material")
	assert.Equal(t, float32(3), shared.EmissiveIntensity)
}

func TestGroupsUseNaturalOrder(t *testing.T) {
	root := group("world", mesh("switch10"), mesh("switch2"), mesh("switch1"))
	idx := Build(root, DefaultTable(), nil)
	var got []string
	for _, g := range idx.Groups(Switch) {
		got = append(got, g.Owner.Name)
	}
	assert.Equal(t, []string{"switch1", "switch2", "switch10"}, got)
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"switch1", "switch2", true},
		{"switch2", "switch10", true},
		{"switch10", "switch2", false},
		{"Switch1", "switch2", true},
		{"a", "b", true},
		{"a1", "a01", true},
		{"same", "same", false},
		{"ab", "abc", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NaturalLess(tt.a, tt.b), "%s < %s", tt.a, tt.b)
	}
}

func TestTrailingNumber(t *testing.T) {
	assert.Equal(t, 12, TrailingNumber("kant12"))
	assert.Equal(t, -1, TrailingNumber("hjerne"))
	assert.Equal(t, 0, TrailingNumber("x0"))
}
