package scene

import "github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"

// MaterialKind fixes what a material can do. It is decided at load time.
type MaterialKind int

const (
	// Lit materials are shaded and support an emissive term.
	Lit MaterialKind = iota
	// Unlit materials output their albedo as-is and cannot emit.
	Unlit
)

func (k MaterialKind) String() string {
	if k == Unlit {
		return "unlit"
	}
	return "lit"
}

// Material describes surface appearance properties for a mesh.
type Material struct {
	Name   string
	Kind   MaterialKind
	Albedo core.Color // multiplied with AlbedoTexture if set

	Specular  core.Color
	Shininess float32

	// Emissive is only meaningful on Lit materials.
	Emissive          core.Color
	EmissiveIntensity float32

	// Optional albedo texture; upload via the renderer before drawing.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Kind:      Lit,
		Albedo:    core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
		Emissive:  core.ColorBlack,
	}
}

func NewMaterial(name string, albedo core.Color) *Material {
	m := DefaultMaterial()
	m.Name = name
	m.Albedo = albedo
	return m
}

// NewUnlitMaterial creates a flat material that outputs color unshaded.
func NewUnlitMaterial(name string, color core.Color) *Material {
	return &Material{Name: name, Kind: Unlit, Albedo: color, Emissive: core.ColorBlack}
}

// SupportsEmissive reports whether SetEmissive can take effect.
func (m *Material) SupportsEmissive() bool {
	return m != nil && m.Kind == Lit
}

// SetEmissive sets the emissive term. It returns false for materials
// that cannot emit.
func (m *Material) SetEmissive(c core.Color, intensity float32) bool {
	if !m.SupportsEmissive() {
		return false
	}
	m.Emissive = c
	m.EmissiveIntensity = intensity
	return true
}

// EmissiveRadiance is Emissive scaled by its intensity.
func (m *Material) EmissiveRadiance() core.Color {
	if !m.SupportsEmissive() {
		return core.ColorBlack
	}
	return m.Emissive.Scale(m.EmissiveIntensity)
}

// Clone returns a shallow copy; textures stay shared.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

// ToLit converts an unlit material into a lit one with the same look
// and no emission.
func (m *Material) ToLit() *Material {
	c := m.Clone()
	c.Kind = Lit
	c.Specular = core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
	c.Shininess = 16
	c.Emissive = core.ColorBlack
	c.EmissiveIntensity = 0
	return c
}
