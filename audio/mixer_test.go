package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 1000 // 1 frame per ms keeps the arithmetic readable

type fakeDevice struct {
	resumeErrs []error
	resumes    int
	reader     io.Reader
	closed     int
}

func (d *fakeDevice) Resume(context.Context) error {
	d.resumes++
	if len(d.resumeErrs) > 0 {
		err := d.resumeErrs[0]
		d.resumeErrs = d.resumeErrs[1:]
		return err
	}
	return nil
}

func (d *fakeDevice) Play(r io.Reader) error {
	d.reader = r
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed++
	return nil
}

// constTrack is frames of a constant stereo value.
func constTrack(v float32, frames int) []float32 {
	s := make([]float32, frames*channels)
	for i := range s {
		s[i] = v
	}
	return s
}

func testOptions(decodes *atomic.Int32) Options {
	tracks := map[string][]float32{
		"bg.wav": constTrack(0.5, 2000),
		"l1.wav": constTrack(0.25, 2000),
		"l2.wav": constTrack(0.125, 2000),
	}
	opts := DefaultOptions()
	opts.SampleRate = testRate
	opts.Background = "bg.wav"
	opts.Layers = []string{"l1.wav", "l2.wav"}
	opts.FS = fstest.MapFS{
		"bg.wav": {Data: []byte("bg")},
		"l1.wav": {Data: []byte("l1")},
		"l2.wav": {Data: []byte("l2")},
	}
	opts.Decode = func(name string, _ []byte, rate int) ([]float32, error) {
		if decodes != nil {
			decodes.Add(1)
		}
		if rate != testRate {
			return nil, errors.New("wrong rate")
		}
		return tracks[name], nil
	}
	return opts
}

func ready(t *testing.T, opts Options) (*Mixer, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	m := New(dev, opts, nil)
	require.NoError(t, m.Init(context.Background()))
	require.Equal(t, Ready, m.State())
	require.Same(t, m, dev.reader)
	return m, dev
}

// pump pulls frames through the mixer and returns the last left sample.
func pump(t *testing.T, m *Mixer, frames int) float32 {
	t.Helper()
	buf := make([]byte, frames*4)
	n, err := m.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	last := int16(binary.LittleEndian.Uint16(buf[n-4:]))
	return float32(last) / 32767
}

func TestInitStartsEverySourceOnOneFrame(t *testing.T) {
	m, _ := ready(t, testOptions(nil))

	assert.Zero(t, pump(t, m, 49), "silent during the lead")
	assert.InDelta(t, 0.5, pump(t, m, 2), 1e-3)

	assert.Equal(t, float32(1), m.Gain(0))
	assert.Zero(t, m.Gain(1))
	assert.Zero(t, m.Gain(2))
	assert.Equal(t, 2, m.LayerCount())
}

func TestSetLayerOnRampsAndCancels(t *testing.T) {
	m, _ := ready(t, testOptions(nil))
	pump(t, m, 100)

	m.SetLayerOn(0, true)
	assert.Zero(t, m.Gain(1))
	pump(t, m, 4)
	assert.InDelta(t, 0.5, m.Gain(1), 1e-6)

	// reversing mid-ramp starts from the current value
	m.SetLayerOn(0, false)
	assert.InDelta(t, 0.5, m.Gain(1), 1e-6)
	pump(t, m, 4)
	assert.InDelta(t, 0.25, m.Gain(1), 1e-6)
	pump(t, m, 4)
	assert.Zero(t, m.Gain(1))

	m.SetLayerOn(1, true)
	out := pump(t, m, 20)
	assert.InDelta(t, 0.5+0.125, out, 1e-3)
}

func TestSetLayerOnBeforeInitIsNoop(t *testing.T) {
	m := New(&fakeDevice{}, testOptions(nil), nil)
	m.SetLayerOn(0, true)
	m.SetMasterMuted(true)
	m.Solo(1)
	assert.Equal(t, Uninitialized, m.State())
	assert.Zero(t, m.Gain(1))
	assert.Zero(t, pump(t, m, 10))
}

func TestUnknownLayerIgnored(t *testing.T) {
	m, _ := ready(t, testOptions(nil))
	assert.NotPanics(t, func() {
		m.SetLayerOn(-1, true)
		m.SetLayerOn(2, true)
	})
	assert.Zero(t, m.Gain(7))
}

func TestLayersStayPhaseLocked(t *testing.T) {
	m, _ := ready(t, testOptions(nil))
	pump(t, m, 60)

	for i := 0; i < 200; i++ {
		m.SetLayerOn(i%2, i%3 != 0)
		pump(t, m, 37)
		p0 := m.Position(0)
		for l := 1; l <= 2; l++ {
			d := m.Position(l) - p0
			if d < 0 {
				d = -d
			}
			require.Less(t, d, 50*time.Millisecond, "layer %d step %d", l, i)
		}
	}
	// looped past the end of the tracks at least once
	assert.Greater(t, m.CurrentTime(), 2*time.Second)
}

func TestResumeAfterSuspendedInit(t *testing.T) {
	dev := &fakeDevice{resumeErrs: []error{errors.New("suspended: no user gesture")}}
	m := New(dev, testOptions(nil), nil)

	require.NoError(t, m.Init(context.Background()))
	require.NoError(t, m.Resume(context.Background()))
	assert.Equal(t, 2, dev.resumes)
	assert.Equal(t, Ready, m.State())
	assert.Equal(t, float32(1), m.Gain(0))
	assert.Zero(t, m.Gain(1))
	assert.Zero(t, m.Gain(2))
}

func TestDuplicateInitIsNoop(t *testing.T) {
	var decodes atomic.Int32
	m, _ := ready(t, testOptions(&decodes))
	require.NoError(t, m.Init(context.Background()))
	assert.Equal(t, int32(3), decodes.Load())
}

func TestDecodeFailureAllowsRetry(t *testing.T) {
	opts := testOptions(nil)
	opts.Layers = append(opts.Layers, "missing.wav")
	m := New(&fakeDevice{}, opts, nil)

	err := m.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.wav")
	assert.Equal(t, Uninitialized, m.State())
}

func TestDisposeIsIdempotent(t *testing.T) {
	m, dev := ready(t, testOptions(nil))
	m.Dispose()
	m.Dispose()
	assert.Equal(t, 1, dev.closed)
	assert.Equal(t, Disposed, m.State())
	assert.ErrorIs(t, m.Init(context.Background()), ErrDisposed)

	_, err := m.Read(make([]byte, 16))
	assert.ErrorIs(t, err, io.EOF)
	m.SetLayerOn(0, true)
}

func TestFollowSwitchPolicy(t *testing.T) {
	opts := testOptions(nil)
	m, _ := ready(t, opts)
	m.FollowSwitch(0, true)
	pump(t, m, 10)
	m.FollowSwitch(0, false)
	pump(t, m, 10)
	assert.Equal(t, float32(1), m.Gain(1), "latched")

	opts.Policy = Follow
	m, _ = ready(t, opts)
	m.FollowSwitch(0, true)
	pump(t, m, 10)
	m.FollowSwitch(0, false)
	pump(t, m, 10)
	assert.Zero(t, m.Gain(1))
}

func TestSoloClampsAndSkipsRepeat(t *testing.T) {
	m, _ := ready(t, testOptions(nil))
	m.Solo(9)
	assert.Equal(t, 2, m.SoloLevel())
	pump(t, m, 10)
	assert.Zero(t, m.Gain(1))
	assert.Equal(t, float32(1), m.Gain(2))
	assert.Equal(t, float32(1), m.Gain(0), "background untouched")

	m.Solo(-3)
	assert.Equal(t, 1, m.SoloLevel())
	pump(t, m, 4)
	g := m.Gain(1)
	m.Solo(1) // same level, ramp keeps going
	pump(t, m, 4)
	assert.Greater(t, m.Gain(1), g)
}

func TestMasterMute(t *testing.T) {
	m, _ := ready(t, testOptions(nil))
	pump(t, m, 100)
	m.SetMasterMuted(true)
	assert.Zero(t, pump(t, m, 21))
	m.SetMasterMuted(false)
	assert.InDelta(t, 0.5, pump(t, m, 21), 1e-3)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("follow")
	require.NoError(t, err)
	assert.Equal(t, Follow, p)
	_, err = ParsePolicy("toggle")
	assert.Error(t, err)
}

func TestInt16ToFloat(t *testing.T) {
	raw := []byte{0x00, 0x40, 0x00, 0xc0} // 16384, -16384
	assert.Equal(t, []float32{0.5, -0.5}, int16ToFloat(raw))
}
