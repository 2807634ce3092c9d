package flow

import (
	"context"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/config"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/emitter"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/finale"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/pick"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/router"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/sceneindex"
)

// Audio is the part of the mixer the flow drives. *audio.Mixer implements it.
type Audio interface {
	Init(ctx context.Context) error
	Resume(ctx context.Context) error
	FollowSwitch(i int, on bool)
	SetMasterMuted(muted bool)
	Solo(level int)
	Dispose()
}

// Stage is every subsystem built on a loaded world.
type Stage struct {
	Index   *sceneindex.Index
	Glow    *bloom.Compositor
	Router  *router.Router
	Crystal *emitter.Emitter
	Ring    *emitter.Emitter
	Top     *emitter.Emitter
	Bottom  *emitter.Emitter
	Edge    *emitter.Emitter
	Finale  *finale.Finale
	Audio   Audio

	log *zap.Logger
}

func glowOf(t emitter.Highlighter, e config.Emitter) emitter.Glow {
	return emitter.Glow{Target: t, Boost: bloom.Boost{Color: e.Color.Core(), Intensity: e.Intensity}}
}

func emissiveOf(e config.Emitter) emitter.Emissive {
	return emitter.Emissive{Color: e.Color.Core(), Intensity: e.Intensity}
}

// NewStage classifies root and wires the switch fan-out. audio may be nil.
func NewStage(root *scene.Node, glow *bloom.Compositor, cfg config.Config, audio Audio, log *zap.Logger) *Stage {
	log = logger.OrNop(log)
	idx := sceneindex.Build(root, sceneindex.DefaultTable(), log)

	glow.SetDefaultBoost(bloom.Boost{Color: cfg.Bloom.DefaultColor.Core(), Intensity: cfg.Bloom.DefaultIntensity})
	glow.SetParams(bloom.Params{
		Threshold: cfg.Bloom.Threshold,
		Strength:  cfg.Bloom.Strength,
		Radius:    cfg.Bloom.Radius,
		Exposure:  cfg.Bloom.Exposure,
	})

	sw := cfg.Switches
	em := cfg.Emitters
	s := &Stage{
		Index: idx,
		Glow:  glow,
		Router: router.New(idx.Groups(sceneindex.Switch), glow, router.Options{
			HoverColor:    sw.HoverColor.Core(),
			OnColor:       sw.OnColor.Core(),
			Intensity:     sw.Intensity,
			PickInflation: sw.PickInflation,
			Limits:        pick.Limits{Near: sw.PickNear, Far: sw.PickFar},
			Rearm:         sw.Rearm,
		}, log),
		Crystal: emitter.New("crystal", idx.Groups(sceneindex.Crystal), emissiveOf(em.Crystal), em.Crystal.Spin, log),
		Ring:    emitter.New("ring", idx.Groups(sceneindex.Ring), emissiveOf(em.Ring), em.Ring.Spin, log),
		Top:     emitter.New("rotor-top", idx.Groups(sceneindex.Top), glowOf(glow, em.Top), em.Top.Spin, log),
		Bottom:  emitter.New("rotor-bottom", idx.Groups(sceneindex.Bottom), glowOf(glow, em.Bottom), em.Bottom.Spin, log),
		Edge:    emitter.New("edge", idx.Groups(sceneindex.Edge), glowOf(glow, em.Edge), em.Edge.Spin, log),
		Finale: finale.New(idx.Groups(sceneindex.Finale), glow, finale.Options{
			EdgeColor: cfg.Finale.EdgeColor.Core(),
			CoreColor: cfg.Finale.CoreColor.Core(),
			Intensity: cfg.Finale.Intensity,
			Spin:      cfg.Finale.Spin,
		}, log),
		Audio: audio,
		log:   log.Named("stage"),
	}
	s.Router.OnToggle = s.fanOut
	s.Router.OnAllOn = s.allOn
	return s
}

func (s *Stage) emitters() []*emitter.Emitter {
	return []*emitter.Emitter{s.Crystal, s.Ring, s.Top, s.Bottom, s.Edge}
}

// fanOut propagates one toggle to every subsystem keyed by the same id. A
// world may have fewer emitters of a kind than switches.
func (s *Stage) fanOut(id int, on bool) {
	s.log.Debug("switch toggled", zap.Int("id", id), zap.Bool("on", on))
	for _, em := range s.emitters() {
		if !em.Has(id) {
			s.log.Debug("no emitter for switch", zap.String("kind", em.Kind()), zap.Int("id", id))
			continue
		}
		em.SetOnByID(id, on)
	}
	if s.Audio != nil {
		s.Audio.FollowSwitch(id, on)
	}
}

func (s *Stage) allOn() {
	s.log.Info("all switches on")
	s.Finale.Arm()
	s.Edge.SetUnnumberedOn(true)
}

// Tick advances every animated subsystem.
func (s *Stage) Tick(dt float32) {
	for _, em := range s.emitters() {
		em.Tick(dt)
	}
	s.Finale.Tick(dt)
}
