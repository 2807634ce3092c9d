// Package world loads the walkable scene: the visible world and the nav mesh
// the camera walks on.
package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// ErrNoNavMesh is returned when the nav file holds no triangles.
var ErrNoNavMesh = errors.New("world: nav file has no mesh")

// Loader reads one glTF file. scene.LoadGLTF in production.
type Loader func(path string, log *zap.Logger) (*scene.GLTFResult, error)

type Options struct {
	WorldPath string
	NavPath   string
	Scale     float32
	// Yaw is the rotation about +Y in radians applied to both roots.
	Yaw float32

	Loader Loader
	Log    *zap.Logger
}

// YawFromTurns converts multiples of pi to radians.
func YawFromTurns(turns float32) float32 {
	return turns * math.Pi
}

// World is a loaded scene. Nav nodes are hidden but stay raycastable.
type World struct {
	Root     *scene.Node
	Nav      *scene.Node
	Textures []*scene.Texture
}

// NavMeshes returns the triangle nodes of the nav mesh.
func (w *World) NavMeshes() []*scene.Node {
	if w == nil || w.Nav == nil {
		return nil
	}
	return w.Nav.Meshes()
}

// NavBounds is the world-space box around the nav mesh.
func (w *World) NavBounds() (scene.AABB, bool) {
	var box scene.AABB
	found := false
	for _, n := range w.NavMeshes() {
		if !n.Mesh.HasLocalAABB {
			continue
		}
		b := scene.ComputeAABB(n.Mesh, n.GetWorldMatrix())
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, found
}

// Load reads both files in parallel. progress, if set, gets 0 first and 100
// once both files are in. It is called from the loading goroutines, so the
// values may arrive out of order.
func Load(ctx context.Context, opts Options, progress func(pct int)) (*World, error) {
	log := logger.OrNop(opts.Log).Named("world")
	load := opts.Loader
	if load == nil {
		load = scene.LoadGLTF
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}

	var (
		mu     sync.Mutex
		loaded int
	)
	const total = 2
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}
	report(0)

	var worldRes, navRes *scene.GLTFResult
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(path string, dst **scene.GLTFResult) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := load(path, log)
			if err != nil {
				return fmt.Errorf("load %q: %w", path, err)
			}
			*dst = res
			mu.Lock()
			loaded++
			pct := loaded * 100 / total
			mu.Unlock()
			report(pct)
			return nil
		}
	}
	g.Go(fetch(opts.WorldPath, &worldRes))
	g.Go(fetch(opts.NavPath, &navRes))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &World{
		Root:     worldRes.Root("world"),
		Nav:      navRes.Root("nav"),
		Textures: worldRes.Textures,
	}
	place(w.Root, opts.Scale, opts.Yaw)
	place(w.Nav, opts.Scale, opts.Yaw)

	navMeshes := w.NavMeshes()
	if len(navMeshes) == 0 {
		return nil, ErrNoNavMesh
	}
	for _, n := range navMeshes {
		n.Visible = false
	}
	log.Info("world loaded",
		zap.Int("world_meshes", len(w.Root.Meshes())),
		zap.Int("nav_meshes", len(navMeshes)),
		zap.Int("textures", len(w.Textures)))
	return w, nil
}

func place(root *scene.Node, scale, yaw float32) {
	root.SetScale(mgl32.Vec3{scale, scale, scale})
	root.SetRotation(mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}))
}
