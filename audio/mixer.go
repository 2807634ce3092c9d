// Package audio plays a background track and N gated layers in lockstep.
// Every source starts on the same frame of one shared playhead and is never
// stopped; audibility changes only through gain ramps.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
)

// ErrDisposed is returned by Init after Dispose.
var ErrDisposed = errors.New("audio: mixer disposed")

type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Policy decides how a switch going OFF affects its layer.
type Policy int

const (
	// Latch keeps a layer audible once it has been switched on.
	Latch Policy = iota
	// Follow mutes the layer again when its switch goes OFF.
	Follow
)

// ParsePolicy accepts "latch" and "follow".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "latch", "":
		return Latch, nil
	case "follow":
		return Follow, nil
	}
	return Latch, fmt.Errorf("unknown audio policy %q", s)
}

const channels = 2

// Device pulls interleaved stereo signed 16-bit little-endian PCM.
type Device interface {
	// Resume readies output. It may fail until a user gesture has happened.
	Resume(ctx context.Context) error
	// Play starts pulling from r on the device's own goroutine.
	Play(r io.Reader) error
	Close() error
}

// Decoder turns an encoded file into interleaved stereo float32 samples at
// sampleRate.
type Decoder func(name string, data []byte, sampleRate int) ([]float32, error)

type Options struct {
	Background string
	Layers     []string
	SampleRate int
	Lead       time.Duration // delay between init and the common start frame
	Snap       time.Duration // shortest ramp
	Ramp       time.Duration // requested ramp for SetLayerOn
	MasterRamp time.Duration
	Loop       bool
	Policy     Policy

	// FS resolves track names. Defaults to the working directory.
	FS     fs.FS
	Decode Decoder
}

func DefaultOptions() Options {
	return Options{
		SampleRate: 44100,
		Lead:       50 * time.Millisecond,
		Snap:       8 * time.Millisecond,
		MasterRamp: 20 * time.Millisecond,
		Loop:       true,
		Policy:     Latch,
	}
}

type layer struct {
	name    string
	samples []float32
	gain    param
}

type Mixer struct {
	opts Options
	dev  Device
	log  *zap.Logger

	mu     sync.Mutex
	state  State
	frame  int64    // shared playhead, advanced by Read
	start  int64    // frame all sources start on
	layers []*layer // [0] is the background
	master param
	solo   int
}

// New builds a mixer in the Uninitialized state. No I/O happens until Init.
func New(dev Device, opts Options, log *zap.Logger) *Mixer {
	if opts.FS == nil {
		opts.FS = os.DirFS(".")
	}
	if opts.Decode == nil {
		opts.Decode = DecodeFile
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	return &Mixer{
		opts:   opts,
		dev:    dev,
		log:    logger.OrNop(log).Named("audio"),
		master: constant(1),
	}
}

func (m *Mixer) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mixer) frames(d time.Duration) int64 {
	return int64(d) * int64(m.opts.SampleRate) / int64(time.Second)
}

// Init resumes the device, decodes every track in parallel and schedules
// them all on one start frame. Calls while initializing or ready are no-ops.
func (m *Mixer) Init(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case Disposed:
		m.mu.Unlock()
		return ErrDisposed
	case Initializing, Ready:
		m.mu.Unlock()
		m.log.Debug("init ignored", zap.Stringer("state", m.state))
		return nil
	}
	m.state = Initializing
	m.mu.Unlock()

	if m.dev != nil {
		if err := m.dev.Resume(ctx); err != nil {
			m.log.Warn("audio device resume failed, staying silent until resumed", zap.Error(err))
		}
	}

	names := append([]string{m.opts.Background}, m.opts.Layers...)
	decoded := make([][]float32, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(m.opts.FS, name)
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			pcm, err := m.opts.Decode(name, data, m.opts.SampleRate)
			if err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			decoded[i] = pcm
			m.log.Debug("decoded", zap.String("track", name), zap.Int("samples", len(pcm)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.mu.Lock()
		if m.state == Initializing {
			m.state = Uninitialized
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if m.state == Disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	m.start = m.frame + m.frames(m.opts.Lead)
	m.layers = make([]*layer, len(names))
	for i, pcm := range decoded {
		gain := constant(0)
		if i == 0 {
			gain = constant(1)
		}
		m.layers[i] = &layer{name: names[i], samples: pcm, gain: gain}
	}
	m.state = Ready
	start := m.start
	m.mu.Unlock()

	if m.dev != nil {
		if err := m.dev.Play(m); err != nil {
			return fmt.Errorf("start output: %w", err)
		}
	}
	m.log.Info("mixer ready", zap.Int("layers", len(names)-1), zap.Int64("start_frame", start))
	return nil
}

// Resume retries the device after a user gesture.
func (m *Mixer) Resume(ctx context.Context) error {
	if m.dev == nil {
		return nil
	}
	if err := m.dev.Resume(ctx); err != nil {
		m.log.Warn("audio device resume failed", zap.Error(err))
		return err
	}
	return nil
}

// LayerCount is the number of gated layers.
func (m *Mixer) LayerCount() int {
	return len(m.opts.Layers)
}

// SetLayerOn ramps gated layer i (0-based) to 1 or 0. It is a no-op before
// Init completes.
func (m *Mixer) SetLayerOn(i int, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Ready {
		return
	}
	if i < 0 || i+1 >= len(m.layers) {
		m.log.Warn("unknown layer", zap.Int("layer", i))
		return
	}
	target := float32(0)
	if on {
		target = 1
	}
	m.layers[i+1].gain.rampTo(target, m.frame, m.frames(max(m.opts.Ramp, m.opts.Snap)))
	m.log.Debug("layer", zap.Int("layer", i), zap.Bool("on", on))
}

// FollowSwitch applies the configured policy to a switch change.
func (m *Mixer) FollowSwitch(i int, on bool) {
	if !on && m.opts.Policy == Latch {
		return
	}
	m.SetLayerOn(i, on)
}

// SetMasterMuted ramps the master gain to 0 or 1.
func (m *Mixer) SetMasterMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Ready {
		return
	}
	target := float32(1)
	if muted {
		target = 0
	}
	m.master.rampTo(target, m.frame, m.frames(max(m.opts.MasterRamp, m.opts.Snap)))
}

// Solo makes gated layer level (1-based, clamped to 1..N) the only audible
// gated layer. Repeating the current level is a no-op.
func (m *Mixer) Solo(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.layers) - 1
	if m.state != Ready || n < 1 {
		return
	}
	level = min(max(level, 1), n)
	if level == m.solo {
		return
	}
	dur := m.frames(max(m.opts.Ramp, m.opts.Snap))
	for i := 1; i <= n; i++ {
		target := float32(0)
		if i == level {
			target = 1
		}
		m.layers[i].gain.rampTo(target, m.frame, dur)
	}
	m.solo = level
}

// SoloLevel returns the level set by Solo, 0 if none.
func (m *Mixer) SoloLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.solo
}

// Gain returns the current gain of layer i, where 0 is the background and
// 1..N are the gated layers.
func (m *Mixer) Gain(i int) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.layers) {
		return 0
	}
	return m.layers[i].gain.at(m.frame)
}

// Position returns how far into its track layer i is, using the same
// indexing as Gain. Before the start frame it is 0.
func (m *Mixer) Position(i int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.layers) {
		return 0
	}
	idx, ok := m.sampleFrame(m.layers[i], m.frame)
	if !ok {
		return 0
	}
	return time.Duration(float64(idx) / float64(m.opts.SampleRate) * float64(time.Second))
}

// CurrentTime is the playhead position since the device started pulling.
func (m *Mixer) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(float64(m.frame) / float64(m.opts.SampleRate) * float64(time.Second))
}

// sampleFrame maps the shared playhead to a frame inside l.
func (m *Mixer) sampleFrame(l *layer, f int64) (int64, bool) {
	length := int64(len(l.samples) / channels)
	if f < m.start || length == 0 {
		return 0, false
	}
	pos := f - m.start
	if pos >= length {
		if !m.opts.Loop {
			return 0, false
		}
		pos %= length
	}
	return pos, true
}

// Read fills p with mixed PCM and advances the playhead. It never blocks on
// I/O and writes silence when not ready.
func (m *Mixer) Read(p []byte) (int, error) {
	const frameBytes = channels * 2
	n := len(p) / frameBytes
	if n == 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Disposed {
		return 0, io.EOF
	}
	for k := 0; k < n; k++ {
		f := m.frame + int64(k)
		var l, r float32
		if m.state == Ready {
			master := m.master.at(f)
			for _, ly := range m.layers {
				idx, ok := m.sampleFrame(ly, f)
				if !ok {
					continue
				}
				g := ly.gain.at(f) * master
				if g == 0 {
					continue
				}
				l += ly.samples[idx*channels] * g
				r += ly.samples[idx*channels+1] * g
			}
		}
		binary.LittleEndian.PutUint16(p[k*frameBytes:], uint16(toInt16(l)))
		binary.LittleEndian.PutUint16(p[k*frameBytes+2:], uint16(toInt16(r)))
	}
	m.frame += int64(n)
	return n * frameBytes, nil
}

func toInt16(v float32) int16 {
	v = float32(math.Max(-1, math.Min(1, float64(v))))
	return int16(v * math.MaxInt16)
}

// Dispose stops output and closes the device. It is safe to call repeatedly.
func (m *Mixer) Dispose() {
	m.mu.Lock()
	if m.state == Disposed {
		m.mu.Unlock()
		return
	}
	m.state = Disposed
	m.layers = nil
	m.mu.Unlock()

	if m.dev != nil {
		if err := m.dev.Close(); err != nil {
			m.log.Warn("closing audio device", zap.Error(err))
		}
	}
	m.log.Info("mixer disposed")
}
