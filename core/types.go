package core

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGBA color. Components above 1 are allowed (HDR glow).
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ParseHex parses an sRGB "#rrggbb", "rrggbb" or "#rgb" string into an opaque
// linear Color.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if (len(h) != 3 && len(h) != 6) || strings.Trim(h, hexDigits) != "" {
		return Color{}, fmt.Errorf("color %q: want 3 or 6 hex digits", s)
	}
	c, err := colorful.Hex("#" + strings.ToLower(h))
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.LinearRgb()
	return Color{R: float32(r), G: float32(g), B: float32(b), A: 1}, nil
}

const hexDigits = "0123456789abcdefABCDEF"

// Hex encodes the color as sRGB "#rrggbb", clamping HDR channels.
func (c Color) Hex() string {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped().Hex()
}

// MustHex is ParseHex for compile-time palette constants.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Scale multiplies the RGB channels by k and leaves alpha untouched.
func (c Color) Scale(k float32) Color {
	return Color{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A}
}

// Add sums RGB channels; alpha is taken from c.
func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A}
}

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Color    Color
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// GetMatrix returns T * R * S.
func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

func (t Transform) GetForward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) GetRight() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (t Transform) GetUp() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}
