package render

import (
	"image"
	"testing"
	"time"

	"aura/appstate"
	"aura/frame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(v Variant) (*Loop, *frame.Manual) {
	sched := frame.NewManual()
	return NewLoop(sched, NewImageCanvas(200, 120), DefaultTheme(v), WithSeed(42)), sched
}

func TestLoopRunsUntilStopped(t *testing.T) {
	l, sched := newTestLoop(Particles)
	assert.False(t, l.Running())
	l.Start()
	require.True(t, l.Running())
	require.Equal(t, 1, sched.Pending())
	for i := 0; i < 10; i++ {
		sched.Step(time.Now())
	}
	assert.Equal(t, uint64(10), l.Frames())
	assert.Len(t, l.Particles(), 30)

	l.Stop()
	assert.False(t, l.Running())
	assert.Equal(t, 0, sched.Pending(), "stop must cancel the scheduled frame")
	assert.Empty(t, l.Particles())
	sched.Step(time.Now())
	assert.Equal(t, uint64(10), l.Frames())
	l.Stop()
}

func TestLoopStartIsIdempotent(t *testing.T) {
	l, sched := newTestLoop(Particles)
	l.Start()
	l.Start()
	assert.Equal(t, 1, sched.Pending())
	l.Stop()
}

func TestLoopPresentsFrames(t *testing.T) {
	l, sched := newTestLoop(Soft)
	var got *image.RGBA
	l.Present(func(img *image.RGBA) { got = img })
	l.Start()
	defer l.Stop()
	l.PointerMove(50, 50)
	sched.Step(time.Now())
	require.NotNil(t, got)
	assert.Equal(t, 200, got.Bounds().Dx())
}

func TestLoopResizeClampsParticles(t *testing.T) {
	l, sched := newTestLoop(Particles)
	l.Start()
	defer l.Stop()
	sched.Step(time.Now())

	l.Resize(20, 10)
	sched.Step(time.Now())
	for _, p := range l.Particles() {
		assert.True(t, p.X >= 0 && p.X <= 20 && p.Y >= 0 && p.Y <= 10, "particle (%v,%v) outside resized bounds", p.X, p.Y)
	}
	assert.Len(t, l.Particles(), 30, "resize must not recreate the pool")
}

func TestOrbScaleBounds(t *testing.T) {
	l, _ := newTestLoop(Orb)
	cases := []struct{ in, want float64 }{
		{0, 1},
		{0.5, 1.075},
		{1, 1.15},
		{7, 1.15},
		{-3, 1},
	}
	for _, c := range cases {
		l.SetLoudness(c.in)
		assert.InDelta(t, c.want, l.Scale(), 1e-9, "loudness %v", c.in)
	}
}

func TestOrbTintFollowsState(t *testing.T) {
	sample := func(s appstate.State) uint8 {
		l, sched := newTestLoop(Orb)
		var img *image.RGBA
		l.Present(func(i *image.RGBA) { img = i })
		l.SetState(s)
		l.Start()
		sched.Step(time.Now())
		l.Stop()
		// halo ring, outside the white core
		return img.RGBAAt(100+95, 60).R
	}
	idle := sample(appstate.Idle)
	listening := sample(appstate.Listening)
	assert.Greater(t, listening, idle, "listening halo should be redder than idle")
}

func TestSetThemeKeepsPoolSize(t *testing.T) {
	l, sched := newTestLoop(Particles)
	l.Start()
	defer l.Stop()
	th := DefaultTheme(Particles)
	th.ParticleCount = 5
	l.SetTheme(th)
	sched.Step(time.Now())
	assert.Len(t, l.Particles(), 30)
}

func TestFallbackDrawsWithoutPointer(t *testing.T) {
	l, sched := newTestLoop(Fallback)
	var img *image.RGBA
	l.Present(func(i *image.RGBA) { img = i })
	l.Start()
	defer l.Stop()
	for i := 0; i < 3; i++ {
		sched.Step(time.Now())
	}
	require.NotNil(t, img)
	c := img.RGBAAt(100, 60)
	assert.True(t, c.R > 0 || c.G > 0 || c.B > 0, "fallback centre should be lit")
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, Soft, VariantFor(767))
	assert.Equal(t, Particles, VariantFor(768))
	v, ok := ParseVariant(" Orb ")
	assert.True(t, ok)
	assert.Equal(t, Orb, v)
	_, ok = ParseVariant("video")
	assert.False(t, ok)
}
