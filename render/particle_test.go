package render

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleStaysInBounds(t *testing.T) {
	th := DefaultTheme(Particles)
	rng := rand.New(rand.NewPCG(1, 2))
	const w, h = 320.0, 200.0

	ps := make([]Particle, 200)
	for i := range ps {
		ps[i] = newParticle(rng, w, h, 1)
		// exaggerate speed so edges are hit often
		ps[i].VX *= 40
		ps[i].VY *= 40
	}
	for frame := 0; frame < 2000; frame++ {
		px, py := rng.Float64()*w, rng.Float64()*h
		for i := range ps {
			ps[i].Update(px, py, th, w, h)
			p := ps[i]
			require.True(t, p.X >= 0 && p.X <= w && p.Y >= 0 && p.Y <= h,
				"frame %d particle %d escaped: (%v,%v)", frame, i, p.X, p.Y)
		}
	}
}

func TestParticleReflectsAtEdge(t *testing.T) {
	th := DefaultTheme(Particles)
	th.Damping = 1
	p := Particle{X: 1, Y: 50, VX: -3}
	p.Update(-1000, -1000, th, 100, 100)
	assert.InDelta(t, 2.0, p.X, 1e-9)
	assert.Equal(t, 3.0, p.VX)

	p = Particle{X: 99, Y: 50, VX: 3}
	p.Update(-1000, -1000, th, 100, 100)
	assert.InDelta(t, 98.0, p.X, 1e-9)
	assert.Equal(t, -3.0, p.VX)
}

func TestParticleAttractedWithinRadius(t *testing.T) {
	th := DefaultTheme(Particles)
	th.Damping = 1
	p := Particle{X: 100, Y: 100}
	p.Update(150, 100, th, 400, 400)
	assert.Greater(t, p.VX, 0.0, "particle should move toward the pointer")
	assert.Zero(t, p.VY)

	far := Particle{X: 100, Y: 100}
	far.Update(300, 100, th, 400, 400)
	assert.Zero(t, far.VX, "pointer outside radius must not pull")
}

func TestParticleDampingDecays(t *testing.T) {
	th := DefaultTheme(Particles)
	p := Particle{X: 200, Y: 200, VX: 1, VY: -1}
	for i := 0; i < 100; i++ {
		p.Update(-1000, -1000, th, 400, 400)
	}
	assert.Less(t, p.VX, 0.5)
	assert.Greater(t, p.VY, -0.5)
}

func TestNewParticleRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 500; i++ {
		p := newParticle(rng, 100, 50, 1)
		require.True(t, p.Radius >= 0.5 && p.Radius < 2.5, "radius %v", p.Radius)
		require.True(t, p.Opacity >= 0.2 && p.Opacity < 0.7, "opacity %v", p.Opacity)
		require.True(t, p.VX >= -0.25 && p.VX < 0.25, "vx %v", p.VX)
		require.True(t, p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 50)
	}
}
