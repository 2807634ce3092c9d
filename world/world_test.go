package world

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

func plane(name string, size float32) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreatePlane(size)
	return n
}

func fakeLoader(files map[string]*scene.GLTFResult) Loader {
	return func(path string, _ *zap.Logger) (*scene.GLTFResult, error) {
		res, ok := files[path]
		if !ok {
			return nil, errors.New("file not found")
		}
		return res, nil
	}
}

func TestLoadPlacesBothRoots(t *testing.T) {
	files := map[string]*scene.GLTFResult{
		"world.glb": {Roots: []*scene.Node{plane("switch1", 1)}, Textures: []*scene.Texture{{}}},
		"nav.glb":   {Roots: []*scene.Node{plane("floor", 2)}},
	}
	var mu sync.Mutex
	var got []int
	w, err := Load(context.Background(), Options{
		WorldPath: "world.glb",
		NavPath:   "nav.glb",
		Scale:     5,
		Yaw:       YawFromTurns(1.2),
		Loader:    fakeLoader(files),
	}, func(p int) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})
	require.NoError(t, err)

	sort.Ints(got)
	assert.Equal(t, []int{0, 50, 100}, got)
	assert.Len(t, w.Textures, 1)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, w.Root.Transform.Scale)
	assert.Equal(t, w.Root.Transform.Rotation, w.Nav.Transform.Rotation)

	for _, n := range w.NavMeshes() {
		assert.False(t, n.Visible, "nav is raycast only")
	}
	box, ok := w.NavBounds()
	require.True(t, ok)
	assert.InDelta(t, 0, box.Center().X(), 1e-4)
	assert.Greater(t, box.Size().X(), float32(5))
}

func TestLoadWithoutNavMesh(t *testing.T) {
	files := map[string]*scene.GLTFResult{
		"world.glb": {Roots: []*scene.Node{plane("a", 1)}},
		"nav.glb":   {Roots: []*scene.Node{scene.NewNode("empty")}},
	}
	_, err := Load(context.Background(), Options{
		WorldPath: "world.glb", NavPath: "nav.glb", Loader: fakeLoader(files),
	}, nil)
	assert.ErrorIs(t, err, ErrNoNavMesh)
}

func TestLoadFailureIsReturned(t *testing.T) {
	files := map[string]*scene.GLTFResult{
		"world.glb": {Roots: []*scene.Node{plane("a", 1)}},
	}
	_, err := Load(context.Background(), Options{
		WorldPath: "world.glb", NavPath: "missing.glb", Loader: fakeLoader(files),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.glb")
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, Options{Loader: fakeLoader(nil)}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYawFromTurns(t *testing.T) {
	assert.InDelta(t, math.Pi*1.2, YawFromTurns(1.2), 1e-6)
}
