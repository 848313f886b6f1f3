package render

import (
	"image/color"
	"math"

	"aura/appstate"
)

var (
	glowInner = rgba(168, 85, 247, 102)
	glowMid   = rgba(59, 130, 246, 38)
)

func drawGlow(c Canvas, t Theme, x, y float64) {
	c.RadialGradient(x, y, t.GlowRadius, []Stop{
		{0, glowInner},
		{0.5, glowMid},
		{0.7, rgba(59, 130, 246, 0)},
	}, BlendScreen)
}

func accent(s appstate.State) color.NRGBA {
	a := s.Accent()
	return rgba(a.R, a.G, a.B, uint8(math.Round(a.A * 255)))
}

// blob orbit speeds and radii, as fractions of the 300px reference surface
var blobs = [3]struct{ vx, vy, r float64 }{
	{1, 1.2, 150},
	{-1.5, 1, 120},
	{0.8, -1.5, 180},
}

func drawOrb(c Canvas, t Theme, s appstate.State, scale, tm float64) {
	w, h := c.Size()
	cx, cy := float64(w)/2, float64(h)/2
	r := t.OrbRadius * scale

	ac := accent(s)
	edge := ac
	edge.A = 0
	c.RadialGradient(cx, cy, r*1.8, []Stop{{0.45, ac}, {1, edge}}, BlendScreen)

	pal := t.Mood.Palette()
	for i, b := range blobs {
		bx := cx + math.Sin(tm*b.vx)*r*0.25
		by := cy + math.Cos(tm*b.vy)*r*0.25
		col := pal[i]
		col.A = 150
		end := col
		end.A = 0
		c.RadialGradient(bx, by, r*b.r/180, []Stop{{0, col}, {1, end}}, BlendScreen)
	}
	c.RadialGradient(cx, cy, r*0.35, []Stop{
		{0, rgba(255, 255, 255, 140)},
		{1, rgba(255, 255, 255, 0)},
	}, BlendScreen)
}

// drawAura is the pure procedural mode: mood blobs drifting over a slowly
// fading background.
func drawAura(c Canvas, t Theme, tm float64) {
	w, h := c.Size()
	k := math.Min(float64(w), float64(h)) / 300
	cx, cy := float64(w)/2, float64(h)/2
	pal := t.Mood.Palette()
	for i, b := range blobs {
		x := cx + math.Sin(tm*b.vx)*60*k
		y := cy + math.Cos(tm*b.vy)*60*k
		end := pal[i]
		end.A = 0
		c.RadialGradient(x, y, b.r*k, []Stop{{0, pal[i]}, {1, end}}, BlendScreen)
	}
}

func drawParticle(c Canvas, p Particle) {
	c.FillCircle(p.X, p.Y, p.Radius, rgba(255, 255, 255, uint8(math.Round(p.Opacity * 255))))
}

func rgba(r, g, b, a uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
