// Package flow runs the session: the overlay screens, the loading phase, the
// switch fan-out and the per-frame update order.
package flow

import (
	"context"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/config"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/nav"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/pick"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/world"
)

type State int

const (
	StateStart State = iota
	StateLoading
	StateControls
	StatePlaying
	StatePaused
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateLoading:
		return "loading"
	case StateControls:
		return "controls"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Loader loads the world off the frame loop.
type Loader func(ctx context.Context, progress func(pct int)) (*world.World, error)

// Presenter puts a loaded world on screen and returns its compositor. It runs
// on the frame loop, so it may touch the GPU.
type Presenter func(w *world.World) *bloom.Compositor

type Options struct {
	Config  config.Config
	Load    Loader
	Present Presenter
	Audio   Audio // nil runs silent
	Overlay Overlay
	Camera  *scene.Camera

	// LockPointer asks the window for pointer capture. The window reports
	// the outcome through PointerLocked.
	LockPointer func()
	Log         *zap.Logger
}

type loadResult struct {
	world *world.World
	err   error
}

// Experience is the session state machine. All methods except the loading
// goroutine run on the frame loop.
type Experience struct {
	opts Options
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state    State
	results  chan loadResult
	progress atomic.Int32
	shown    int32

	world  *world.World
	stage  *Stage
	move   *nav.Movement
	err    error
	closed bool
}

// New shows the start screen.
func New(opts Options) *Experience {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Experience{
		opts:    opts,
		log:     logger.OrNop(opts.Log).Named("flow"),
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan loadResult, 1),
		shown:   -1,
	}
	if e.opts.Load == nil {
		e.opts.Load = defaultLoader(opts.Config, e.log)
	}
	if e.opts.Camera == nil {
		e.opts.Camera = CameraFrom(opts.Config.Camera, 16.0/9)
	}
	e.show(ScreenStart)
	return e
}

// CameraFrom builds the player camera at its configured start pose.
func CameraFrom(c config.Camera, aspect float32) *scene.Camera {
	cam := scene.NewCamera(mgl32.DegToRad(c.FOVDeg), aspect, c.Near, c.Far)
	cam.SetPosition(mgl32.Vec3{c.Start[0], c.Start[1], c.Start[2]})
	cam.SetYawPitch(mgl32.DegToRad(c.YawDeg), mgl32.DegToRad(c.PitchDeg))
	return cam
}

func defaultLoader(cfg config.Config, log *zap.Logger) Loader {
	return func(ctx context.Context, progress func(int)) (*world.World, error) {
		return world.Load(ctx, world.Options{
			WorldPath: cfg.Assets.World,
			NavPath:   cfg.Assets.Nav,
			Scale:     cfg.World.Scale,
			Yaw:       world.YawFromTurns(cfg.World.YawTurn),
			Log:       log,
		}, progress)
	}
}

func (e *Experience) State() State { return e.state }

// Err is the load error once the state is StateFailed.
func (e *Experience) Err() error { return e.err }

// Stage is nil until the world is loaded.
func (e *Experience) Stage() *Stage { return e.stage }

func (e *Experience) Camera() *scene.Camera { return e.opts.Camera }

// Root exposes the loaded scene graph for diagnostics.
func (e *Experience) Root() *scene.Node {
	if e.world == nil {
		return nil
	}
	return e.world.Root
}

func (e *Experience) show(s Screen) {
	if e.opts.Overlay != nil {
		e.opts.Overlay.ShowOnly(s)
	}
}

// Start leaves the start screen and loads the world and audio in the
// background. It is the user gesture that unlocks audio output.
func (e *Experience) Start() bool {
	if e.state != StateStart {
		return false
	}
	e.state = StateLoading
	e.show(ScreenLoading)
	e.log.Info("loading")

	go func() {
		var w *world.World
		g, gctx := errgroup.WithContext(e.ctx)
		g.Go(func() error {
			var err error
			w, err = e.opts.Load(gctx, func(pct int) { e.progress.Store(int32(pct)) })
			return err
		})
		if e.opts.Audio != nil {
			g.Go(func() error { return e.opts.Audio.Init(gctx) })
		}
		err := g.Wait()
		e.results <- loadResult{world: w, err: err}
	}()
	return true
}

func (e *Experience) poll() {
	if e.state != StateLoading {
		return
	}
	e.syncProgress()
	select {
	case res := <-e.results:
		e.syncProgress()
		if res.err != nil {
			e.err = res.err
			e.state = StateFailed
			e.log.Error("loading failed", zap.Error(res.err))
			return
		}
		e.setup(res.world)
	default:
	}
}

func (e *Experience) syncProgress() {
	if p := e.progress.Load(); p != e.shown {
		e.shown = p
		if e.opts.Overlay != nil {
			e.opts.Overlay.SetProgress(int(p))
		}
	}
}

func (e *Experience) setup(w *world.World) {
	e.world = w
	var glow *bloom.Compositor
	if e.opts.Present != nil {
		glow = e.opts.Present(w)
	}
	if glow == nil {
		glow = bloom.New(w.Root, nil, nil, e.log)
	}
	e.stage = NewStage(w.Root, glow, e.opts.Config, e.opts.Audio, e.log)

	cfg := e.opts.Config
	e.move = nav.NewMovement(e.opts.Camera, nav.NewGround(w.NavMeshes()), nav.Options{
		Speed:         cfg.Movement.Speed,
		RunMultiplier: cfg.Movement.RunMultiplier,
		EyeHeight:     cfg.Movement.EyeHeight,
		GroundFollow:  cfg.Movement.GroundFollow,
		Sensitivity:   cfg.Camera.Sensitivity,
	}, e.log)
	if box, ok := w.NavBounds(); ok {
		c := box.Center()
		e.move.Spawn(c.X(), c.Z())
	}

	e.state = StateControls
	e.show(ScreenControls)
	e.log.Info("ready", zap.Int("switches", e.stage.Router.Count()))
}

// Continue asks for pointer capture from the controls or resume screen.
func (e *Experience) Continue() bool {
	if e.state != StateControls && e.state != StatePaused {
		return false
	}
	if e.opts.LockPointer != nil {
		e.opts.LockPointer()
	}
	return true
}

// PointerLocked applies a pointer capture change reported by the window.
func (e *Experience) PointerLocked(locked bool) {
	switch {
	case locked && (e.state == StateControls || e.state == StatePaused):
		e.state = StatePlaying
		e.move.SetPlaying(true)
		e.show(ScreenNone)
		if a := e.opts.Audio; a != nil {
			a.SetMasterMuted(false)
			go func() { _ = a.Resume(e.ctx) }()
		}
	case !locked && e.state == StatePlaying:
		e.pause()
	}
}

// Focus pauses on focus loss and shows the resume screen on return.
func (e *Experience) Focus(focused bool) {
	switch {
	case !focused && e.state == StatePlaying:
		e.pause()
	case focused && e.state == StatePaused:
		e.show(ScreenResume)
	}
}

func (e *Experience) pause() {
	e.state = StatePaused
	e.move.SetPlaying(false)
	if e.opts.Audio != nil {
		e.opts.Audio.SetMasterMuted(true)
	}
	e.show(ScreenResume)
}

// Solo keeps only music layer level audible. It applies while playing.
func (e *Experience) Solo(level int) {
	if e.state == StatePlaying && e.opts.Audio != nil {
		e.log.Debug("solo", zap.Int("level", level))
		e.opts.Audio.Solo(level)
	}
}

// Look turns the camera by a pointer delta while playing.
func (e *Experience) Look(dx, dy float64) {
	if e.state == StatePlaying {
		e.move.Look(dx, dy)
	}
}

// PointerMove updates switch hover while playing.
func (e *Experience) PointerMove(ray pick.Ray) {
	if e.state == StatePlaying {
		e.stage.Router.PointerMove(ray)
	}
}

// Click is a primary button press. It toggles the aimed switch while playing
// and acts as the overlay button otherwise.
func (e *Experience) Click(ray pick.Ray) {
	switch e.state {
	case StateStart:
		e.Start()
	case StateControls, StatePaused:
		e.Continue()
	case StatePlaying:
		e.stage.Router.PointerDown(ray)
	}
}

// Frame runs one iteration of the loop: movement, then animation, then the
// bloom render. It never blocks and never panics.
func (e *Experience) Frame(dt float32, in nav.Intent) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("frame panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	if e.closed {
		return
	}
	dt = min(max(dt, 0), e.opts.Config.Frame.MaxDT)
	e.poll()
	if e.stage == nil {
		return
	}
	e.move.Update(dt, in)
	e.stage.Tick(dt)
	e.stage.Glow.Render()
}

// Resize forwards the framebuffer size to the compositor.
func (e *Experience) Resize(width, height int) {
	if e.stage != nil {
		e.stage.Glow.Resize(width, height)
	}
}

// Close stops loading, disposes the mixer and releases the bloom targets.
func (e *Experience) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.cancel()
	if e.opts.Audio != nil {
		e.opts.Audio.Dispose()
	}
	if e.stage != nil {
		e.stage.Glow.Close()
	}
}
