package render

import (
	"math"
	"math/rand/v2"
)

type Particle struct {
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Opacity float64
}

func newParticle(rng *rand.Rand, w, h, scale float64) Particle {
	return Particle{
		X:       rng.Float64() * w,
		Y:       rng.Float64() * h,
		Radius:  (rng.Float64()*2 + 0.5) * scale,
		VX:      (rng.Float64() - 0.5) * 0.5 * scale,
		VY:      (rng.Float64() - 0.5) * 0.5 * scale,
		Opacity: rng.Float64()*0.5 + 0.2,
	}
}

// Update advances p by one frame toward the pointer at (px, py) and keeps
// it inside [0,w]x[0,h].
func (p *Particle) Update(px, py float64, t Theme, w, h float64) {
	dx := px - p.X
	dy := py - p.Y
	d := math.Hypot(dx, dy)
	if d > 0 && d < t.AttractRadius {
		force := t.AttractStrength / d
		p.VX += dx * force * t.ForceScale
		p.VY += dy * force * t.ForceScale
	}

	p.X += p.VX
	p.Y += p.VY
	p.X, p.VX = reflect(p.X, p.VX, w)
	p.Y, p.VY = reflect(p.Y, p.VY, h)

	p.VX *= t.Damping
	p.VY *= t.Damping
}

// reflect mirrors a position that crossed an edge back inside and points
// the velocity inward.
func reflect(pos, vel, limit float64) (float64, float64) {
	switch {
	case pos < 0:
		pos, vel = -pos, math.Abs(vel)
	case pos > limit:
		pos, vel = 2*limit-pos, -math.Abs(vel)
	}
	// a step longer than the whole extent can still land outside
	return math.Max(0, math.Min(pos, limit)), vel
}

func (p *Particle) clamp(w, h float64) {
	p.X = math.Max(0, math.Min(p.X, w))
	p.Y = math.Max(0, math.Min(p.Y, h))
}
