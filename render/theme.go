package render

import (
	"image/color"
	"strings"
)

type Variant int

const (
	Soft      Variant = iota // glow, particles and orb
	Particles                // glow and particles
	Orb                      // orb only
	Fallback                 // procedural blobs with trails, no pointer input
)

func (v Variant) String() string {
	switch v {
	case Soft:
		return "soft"
	case Particles:
		return "particles"
	case Orb:
		return "orb"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

// ParseVariant accepts the names printed by String. ok is false for
// anything else.
func ParseVariant(name string) (v Variant, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "soft":
		return Soft, true
	case "particles":
		return Particles, true
	case "orb":
		return Orb, true
	case "fallback":
		return Fallback, true
	}
	return Soft, false
}

// MobileWidth is the width below which the compact variant is used.
const MobileWidth = 768

// VariantFor picks the variant for a surface width.
func VariantFor(width int) Variant {
	if width < MobileWidth {
		return Soft
	}
	return Particles
}

type Mood int

const (
	Calm Mood = iota
	Urgent
	Opportunity
)

func ParseMood(name string) Mood {
	switch strings.ToLower(name) {
	case "urgent":
		return Urgent
	case "opportunity":
		return Opportunity
	}
	return Calm
}

func (m Mood) String() string {
	switch m {
	case Urgent:
		return "urgent"
	case Opportunity:
		return "opportunity"
	}
	return "calm"
}

// Palette returns the three blob colours for m.
func (m Mood) Palette() [3]color.NRGBA {
	switch m {
	case Urgent:
		return [3]color.NRGBA{hex(0xef4444), hex(0xdc2626), hex(0x7f1d1d)}
	case Opportunity:
		return [3]color.NRGBA{hex(0xeab308), hex(0xfbbf24), hex(0xd97706)}
	}
	return [3]color.NRGBA{hex(0x3b82f6), hex(0x8b5cf6), hex(0x06b6d4)}
}

func hex(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// Theme parametrises one surface. Distances are in canvas pixels at
// Scale 1.
type Theme struct {
	Variant Variant
	Mood    Mood

	ParticleCount   int
	AttractRadius   float64
	AttractStrength float64
	ForceScale      float64
	Damping         float64

	GlowRadius  float64
	OrbRadius   float64
	OrbScaleMax float64

	// TrailFade is the alpha of the background wash drawn each frame.
	// 0 clears the canvas fully.
	TrailFade  float64
	Background color.NRGBA

	SpringStiffness float64
	SpringDamping   float64

	Scale float64
}

func DefaultTheme(v Variant) Theme {
	t := Theme{
		Variant:         v,
		Mood:            Calm,
		ParticleCount:   30,
		AttractRadius:   100,
		AttractStrength: 100,
		ForceScale:      0.0001,
		Damping:         0.99,
		GlowRadius:      225,
		OrbRadius:       80,
		OrbScaleMax:     1.15,
		Background:      color.NRGBA{A: 0xff},
		SpringStiffness: 100,
		SpringDamping:   20,
		Scale:           1,
	}
	switch v {
	case Soft:
		t.SpringStiffness, t.SpringDamping = 150, 25
	case Fallback:
		t.ParticleCount = 0
		t.TrailFade = 0.02
	case Orb:
		t.ParticleCount = 0
	}
	return t
}

func (t Theme) scaled() Theme {
	s := t.Scale
	if s <= 0 {
		s = 1
	}
	t.AttractRadius *= s
	t.AttractStrength *= s
	t.GlowRadius *= s
	t.OrbRadius *= s
	t.Scale = s
	return t
}

func (t Theme) drawsGlow() bool      { return t.Variant == Soft || t.Variant == Particles }
func (t Theme) drawsOrb() bool       { return t.Variant == Soft || t.Variant == Orb }
func (t Theme) drawsParticles() bool { return t.Variant != Orb && t.Variant != Fallback }
