// Command rundt is the first-person switch walk: toggle every switch to light
// the crystals, rings and rotors, bring in the music layers and trigger the
// finale.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/audio"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/config"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/flow"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/nav"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/pick"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/platform"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/renderer"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/world"
)

const title = "rundt"

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	debug := flag.Bool("debug", false, "development logging")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	flag.Parse()

	log, err := logger.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	wc := platform.DefaultWindowConfig()
	wc.Title = title
	wc.Width, wc.Height = *width, *height
	if err := run(cfg, wc, *debug, log); err != nil {
		log.Fatal("session ended", zap.Error(err))
	}
}

func audioOptions(c config.Audio) (audio.Options, error) {
	policy, err := audio.ParsePolicy(c.Policy)
	if err != nil {
		return audio.Options{}, err
	}
	o := audio.DefaultOptions()
	o.Background = c.Background
	o.Layers = c.Layers
	o.SampleRate = c.SampleRate
	o.Lead = time.Duration(c.LeadMS) * time.Millisecond
	o.Snap = time.Duration(c.SnapMS) * time.Millisecond
	o.Ramp = time.Duration(c.RampMS) * time.Millisecond
	o.Loop = c.Loop
	o.Policy = policy
	o.FS = os.DirFS(".")
	o.Decode = audio.DecodeFile
	return o, nil
}

// newAudio returns nil when audio is off or no output device opens.
func newAudio(c config.Audio, log *zap.Logger) flow.Audio {
	if !c.Enabled {
		return nil
	}
	opts, err := audioOptions(c)
	if err != nil {
		log.Warn("audio disabled", zap.Error(err))
		return nil
	}
	dev, err := audio.NewOtoDevice(c.SampleRate)
	if err != nil {
		log.Warn("no audio output, running silent", zap.Error(err))
		return nil
	}
	return audio.New(dev, opts, log)
}

// statsEvery is how often -debug refreshes the draw counters in the title.
const statsEvery = 500 * time.Millisecond

func run(cfg config.Config, wc platform.WindowConfig, debug bool, log *zap.Logger) error {
	window, err := platform.NewWindow(wc)
	if err != nil {
		return err
	}
	defer window.Destroy()

	s := scene.NewScene()
	cam := flow.CameraFrom(cfg.Camera, float32(window.Width)/float32(max(window.Height, 1)))
	s.SetCamera(cam)

	re, err := renderer.NewRenderEngine(s, window.Width, window.Height, log)
	if err != nil {
		return err
	}
	defer re.Destroy()

	input := platform.NewInputManager(window)
	overlay := newTitleOverlay(window, title)

	exp := flow.New(flow.Options{
		Config: cfg,
		Present: func(w *world.World) *bloom.Compositor {
			s.AddNode(w.Root)
			s.AddNode(w.Nav)
			re.UploadTextures(w.Textures)
			glow := bloom.New(s.Root, re.BloomFactory(), re, log)
			glow.Resize(window.Width, window.Height)
			return glow
		},
		Audio:       newAudio(cfg.Audio, log),
		Overlay:     overlay,
		Camera:      cam,
		LockPointer: window.LockPointer,
		Log:         log,
	})
	defer exp.Close()

	aim := func() pick.Ray {
		x, y := window.GetCursorPos()
		w, h := window.Handle.GetSize()
		return pick.AimRay(cam, window.IsPointerLocked(), float32(x), float32(y), float32(w), float32(h))
	}

	window.OnResize(func(w, h int) {
		re.Resize(w, h)
		exp.Resize(w, h)
	})
	window.OnPointerLock(func(locked bool) {
		input.ResetMouse()
		exp.PointerLocked(locked)
	})
	window.OnFocus(exp.Focus)
	window.OnMouseButton(func(button int, pressed bool) {
		if button == platform.MouseLeft && pressed {
			exp.Click(aim())
		}
	})
	window.OnKey(func(key int, pressed bool) {
		switch {
		case !pressed:
		case key == platform.KeyEnter && exp.State() != flow.StatePlaying:
			exp.Click(aim())
		case key >= platform.Key1 && key <= platform.Key9:
			exp.Solo(key - platform.Key1 + 1)
		}
	})

	last := time.Now()
	lastStats := last
	for !window.ShouldClose() {
		window.PollEvents()
		input.Update()
		if window.IsPointerLocked() {
			exp.Look(input.MouseDeltaX, input.MouseDeltaY)
		}
		exp.PointerMove(aim())

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if exp.Stage() == nil {
			re.Draw()
		}
		exp.Frame(dt, nav.IntentFrom(input))
		if exp.State() == flow.StateFailed {
			return exp.Err()
		}
		if debug && now.Sub(lastStats) >= statsEvery {
			overlay.SetStats(re.DrawStats())
			lastStats = now
		}
		window.SwapBuffers()
	}
	return nil
}
