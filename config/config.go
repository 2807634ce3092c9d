// Package config holds the tunables of the walk. Load reads a YAML file over
// Default(); anything the file leaves out keeps its default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

// DefaultPath is where cmd looks for the config file.
const DefaultPath = "config/rundt.yaml"

// Color is a core.Color that decodes from "#rrggbb" in YAML.
type Color core.Color

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: color must be a hex string: %w", node.Line, err)
	}
	parsed, err := core.ParseHex(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = Color(parsed)
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	return core.Color(c).Hex(), nil
}

func (c Color) Core() core.Color { return core.Color(c) }

type Config struct {
	Assets   Assets   `yaml:"assets"`
	World    World    `yaml:"world"`
	Camera   Camera   `yaml:"camera"`
	Movement Movement `yaml:"movement"`
	Frame    Frame    `yaml:"frame"`
	Bloom    Bloom    `yaml:"bloom"`
	Switches Switches `yaml:"switches"`
	Emitters Emitters `yaml:"emitters"`
	Finale   Finale   `yaml:"finale"`
	Audio    Audio    `yaml:"audio"`
}

type Assets struct {
	World string `yaml:"world"`
	Nav   string `yaml:"nav"`
}

// World is the transform applied to both the world and the nav mesh.
type World struct {
	Scale   float32 `yaml:"scale"`
	YawTurn float32 `yaml:"yaw_turns"` // multiples of pi
}

type Camera struct {
	FOVDeg   float32    `yaml:"fov_deg"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Start    [3]float32 `yaml:"start"`
	YawDeg   float32    `yaml:"yaw_deg"`
	PitchDeg float32    `yaml:"pitch_deg"`
	// Sensitivity is radians per pixel of pointer motion.
	Sensitivity float32 `yaml:"sensitivity"`
}

type Movement struct {
	EyeHeight     float32 `yaml:"eye_height"`
	Speed         float32 `yaml:"speed"`
	RunMultiplier float32 `yaml:"run_multiplier"`
	// GroundFollow is the per-frame fraction of the height error corrected.
	GroundFollow float32 `yaml:"ground_follow"`
}

type Frame struct {
	MaxDT float32 `yaml:"max_dt"`
}

type Bloom struct {
	Threshold float32 `yaml:"threshold"`
	Strength  float32 `yaml:"strength"`
	Radius    float32 `yaml:"radius"`
	Exposure  float32 `yaml:"exposure"`
	// The default boost applies to glow nodes without an explicit one.
	DefaultColor     Color   `yaml:"default_color"`
	DefaultIntensity float32 `yaml:"default_intensity"`
}

type Switches struct {
	HoverColor    Color   `yaml:"hover_color"`
	OnColor       Color   `yaml:"on_color"`
	Intensity     float32 `yaml:"intensity"`
	PickInflation float32 `yaml:"pick_inflation"`
	PickNear      float32 `yaml:"pick_near"`
	PickFar       float32 `yaml:"pick_far"`

	// Rearm lets the all-on trigger fire again after a switch goes OFF.
	Rearm bool `yaml:"rearm"`
}

type Emitter struct {
	Color     Color   `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
	Spin      float32 `yaml:"spin"` // rad/s while ON
}

type Emitters struct {
	Crystal Emitter `yaml:"crystal"`
	Ring    Emitter `yaml:"ring"`
	Top     Emitter `yaml:"rotor_top"`
	Bottom  Emitter `yaml:"rotor_bottom"`
	Edge    Emitter `yaml:"edge"`
}

type Finale struct {
	EdgeColor Color   `yaml:"edge_color"`
	CoreColor Color   `yaml:"core_color"`
	Intensity float32 `yaml:"intensity"`
	Spin      float32 `yaml:"spin"`
}

type Audio struct {
	Enabled    bool     `yaml:"enabled"`
	Background string   `yaml:"background"`
	Layers     []string `yaml:"layers"`
	SampleRate int      `yaml:"sample_rate"`
	LeadMS     int      `yaml:"lead_ms"`
	SnapMS     int      `yaml:"snap_ms"`
	RampMS     int      `yaml:"ramp_ms"`

	// Policy is "latch" (layers only unmute) or "follow".
	Policy string `yaml:"policy"`
	Loop   bool   `yaml:"loop"`
}

// Default returns the tuned values of the installation.
func Default() Config {
	return Config{
		Assets: Assets{
			World: "assets/world.glb",
			Nav:   "assets/nav.glb",
		},
		World: World{Scale: 5, YawTurn: 1.2},
		Camera: Camera{
			FOVDeg:      75,
			Near:        0.1,
			Far:         2000,
			Start:       [3]float32{140, 8.5, -100},
			YawDeg:      0,
			PitchDeg:    0,
			Sensitivity: 0.002,
		},
		Movement: Movement{
			EyeHeight:     8.5,
			Speed:         20,
			RunMultiplier: 2,
			GroundFollow:  0.18,
		},
		Frame: Frame{MaxDT: 0.05},
		Bloom: Bloom{
			Threshold:        0.5,
			Strength:         1,
			Radius:           0.2,
			Exposure:         1,
			DefaultColor:     Color(core.ColorWhite),
			DefaultIntensity: 2,
		},
		Switches: Switches{
			HoverColor:    Color(core.MustHex("#f59e0b")),
			OnColor:       Color(core.MustHex("#4ade80")),
			Intensity:     1.5,
			PickInflation: 1.7,
			PickNear:      0.1,
			PickFar:       100,
		},
		Emitters: Emitters{
			Crystal: Emitter{Color: Color(core.MustHex("#4ade80")), Intensity: 1.8, Spin: 0.8},
			Ring:    Emitter{Color: Color(core.MustHex("#a855f7")), Intensity: 1.8, Spin: 0.8},
			Top:     Emitter{Color: Color(core.MustHex("#38bdf8")), Intensity: 1.5, Spin: 0.8},
			Bottom:  Emitter{Color: Color(core.MustHex("#38bdf8")), Intensity: 1.5, Spin: -0.8},
			Edge:    Emitter{Color: Color(core.MustHex("#ff9f1c")), Intensity: 1, Spin: 0},
		},
		Finale: Finale{
			EdgeColor: Color(core.MustHex("#f59e0b")),
			CoreColor: Color(core.MustHex("#ef4444")),
			Intensity: 1,
			Spin:      0.8,
		},
		Audio: Audio{
			Enabled:    true,
			Background: "assets/audio/background.wav",
			Layers: []string{
				"assets/audio/layer1.wav",
				"assets/audio/layer2.wav",
				"assets/audio/layer3.wav",
				"assets/audio/layer4.wav",
			},
			SampleRate: 44100,
			LeadMS:     50,
			SnapMS:     8,
			RampMS:     0,
			Policy:     "latch",
			Loop:       true,
		},
	}
}

// Load reads path over Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the frame loop or mixer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Frame.MaxDT <= 0 {
		errs = append(errs, errors.New("frame.max_dt must be positive"))
	}
	if c.World.Scale <= 0 {
		errs = append(errs, errors.New("world.scale must be positive"))
	}
	if c.Switches.PickInflation <= 0 {
		errs = append(errs, errors.New("switches.pick_inflation must be positive"))
	}
	if c.Switches.PickFar <= c.Switches.PickNear {
		errs = append(errs, errors.New("switches.pick_far must exceed pick_near"))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("audio.sample_rate must be positive"))
	}
	switch c.Audio.Policy {
	case "latch", "follow":
	default:
		errs = append(errs, fmt.Errorf("audio.policy %q: want latch or follow", c.Audio.Policy))
	}
	return errors.Join(errs...)
}
