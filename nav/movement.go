package nav

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/platform"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// Intent is the movement the player asks for this frame.
type Intent struct {
	Forward, Back, Left, Right bool
	Run                        bool
}

func (in Intent) axes() (x, z float32) {
	if in.Forward {
		z++
	}
	if in.Back {
		z--
	}
	if in.Left {
		x--
	}
	if in.Right {
		x++
	}
	return x, z
}

// IntentFrom reads WASD, the arrow keys and shift.
func IntentFrom(im *platform.InputManager) Intent {
	return Intent{
		Forward: im.IsKeyDown(platform.KeyW) || im.IsKeyDown(platform.KeyUp),
		Back:    im.IsKeyDown(platform.KeyS) || im.IsKeyDown(platform.KeyDown),
		Left:    im.IsKeyDown(platform.KeyA) || im.IsKeyDown(platform.KeyLeft),
		Right:   im.IsKeyDown(platform.KeyD) || im.IsKeyDown(platform.KeyRight),
		Run:     im.ShiftDown,
	}
}

type Options struct {
	Speed         float32 // units per second
	RunMultiplier float32
	EyeHeight     float32
	// GroundFollow is the fraction of the height error corrected per frame.
	GroundFollow float32
	Sensitivity  float32 // radians per pixel
}

func DefaultOptions() Options {
	return Options{
		Speed:         20,
		RunMultiplier: 2,
		EyeHeight:     8.5,
		GroundFollow:  0.18,
		Sensitivity:   0.002,
	}
}

// Movement walks the camera over the ground. A step that would leave the
// nav mesh is retried along X alone, then Z alone, so the camera slides
// along edges.
type Movement struct {
	Camera *scene.Camera
	Ground Prober
	opts   Options
	log    *zap.Logger

	playing bool
}

func NewMovement(cam *scene.Camera, ground Prober, opts Options, log *zap.Logger) *Movement {
	return &Movement{
		Camera: cam,
		Ground: ground,
		opts:   opts,
		log:    logger.OrNop(log).Named("nav"),
	}
}

// SetPlaying enables movement. It follows the pointer lock.
func (m *Movement) SetPlaying(on bool) { m.playing = on }

func (m *Movement) Playing() bool { return m.playing }

// Look turns the camera by a pointer delta in pixels.
func (m *Movement) Look(dx, dy float64) {
	if !m.playing {
		return
	}
	s := m.opts.Sensitivity
	m.Camera.Look(-float32(dx)*s, -float32(dy)*s)
}

// Spawn puts the camera at eye height above the nav surface at (x, z).
func (m *Movement) Spawn(x, z float32) bool {
	hit, ok := m.Ground.HitXZ(x, z)
	if !ok {
		m.log.Warn("spawn point is off the nav mesh", zap.Float32("x", x), zap.Float32("z", z))
		return false
	}
	m.Camera.SetPosition(mgl32.Vec3{hit.X(), hit.Y() + m.opts.EyeHeight, hit.Z()})
	return true
}

// Update advances the camera by dt seconds.
func (m *Movement) Update(dt float32, in Intent) {
	if !m.playing || m.Camera == nil || m.Ground == nil {
		return
	}
	pos := m.Camera.Position
	var ground mgl32.Vec3
	var onGround bool

	if ix, iz := in.axes(); ix != 0 || iz != 0 {
		speed := m.opts.Speed
		if in.Run {
			speed *= m.opts.RunMultiplier
		}
		dir := m.Camera.FlatRight().Mul(ix).Add(m.Camera.FlatForward().Mul(iz))
		step := dir.Normalize().Mul(speed * dt)

		for _, try := range [][2]float32{
			{pos.X() + step.X(), pos.Z() + step.Z()},
			{pos.X() + step.X(), pos.Z()},
			{pos.X(), pos.Z() + step.Z()},
		} {
			if hit, ok := m.Ground.HitXZ(try[0], try[1]); ok {
				pos[0], pos[2] = try[0], try[1]
				ground, onGround = hit, true
				break
			}
		}
	}
	if !onGround {
		ground, onGround = m.Ground.HitXZ(pos.X(), pos.Z())
	}
	if onGround {
		pos[1] += (ground.Y() + m.opts.EyeHeight - pos.Y()) * m.opts.GroundFollow
	}
	m.Camera.SetPosition(pos)
}
