// Package render runs the procedural surface: a particle field that
// follows a spring-smoothed pointer, a pointer glow and a loudness-driven
// orb, redrawn once per scheduled frame.
package render

import (
	"image"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"aura/appstate"
	"aura/frame"

	"github.com/rs/zerolog"
)

// PresentFunc receives each completed frame. The image is not reused.
type PresentFunc func(img *image.RGBA)

type Option func(*Loop)

// WithSeed makes particle placement deterministic.
func WithSeed(seed uint64) Option {
	return func(l *Loop) { l.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) { l.log = logger.With().Str("component", "loop").Logger() }
}

// WithFPS sets the rate the pointer spring is tuned for.
func WithFPS(fps int) Option {
	return func(l *Loop) { l.fps = fps }
}

type Loop struct {
	sched  frame.Scheduler
	canvas Canvas
	rng    *rand.Rand
	log    zerolog.Logger
	fps    int

	mu        sync.Mutex
	theme     Theme
	active    Theme
	running   bool
	frameID   frame.ID
	particles []Particle
	pointer   *Pointer
	resizeW   int
	resizeH   int
	resize    bool
	loudness  float64
	state     appstate.State
	t         float64
	frames    uint64
	present   PresentFunc
}

func NewLoop(sched frame.Scheduler, canvas Canvas, theme Theme, opts ...Option) *Loop {
	l := &Loop{
		sched:  sched,
		canvas: canvas,
		theme:  theme,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1)),
		log:    zerolog.Nop(),
		fps:    60,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Start creates the particle pool and schedules the first frame. It is a
// no-op while running.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.active = l.theme.scaled()
	w, h := l.canvas.Size()
	if l.resize {
		w, h = l.resizeW, l.resizeH
		l.canvas.Resize(w, h)
		l.resize = false
	}
	fw, fh := float64(w), float64(h)

	l.particles = make([]Particle, l.active.ParticleCount)
	for i := range l.particles {
		l.particles[i] = newParticle(l.rng, fw, fh, l.active.Scale)
	}
	l.pointer = NewPointer(l.fps, l.active.SpringStiffness, l.active.SpringDamping)
	l.pointer.Reset(fw/2, fh/2)
	l.canvas.Fill(l.active.Background)
	l.t = 0
	l.running = true
	l.frameID = l.sched.Request(l.step)
	l.log.Debug().Str("variant", l.active.Variant.String()).Int("particles", len(l.particles)).Msg("loop_start")
}

// Stop cancels the scheduled frame and drops the particle pool.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.sched.Cancel(l.frameID)
	l.frameID = 0
	l.running = false
	l.particles = nil
	l.log.Debug().Uint64("frames", l.frames).Msg("loop_stop")
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Present registers the consumer of completed frames.
func (l *Loop) Present(fn PresentFunc) {
	l.mu.Lock()
	l.present = fn
	l.mu.Unlock()
}

// SetTheme replaces the theme. Colours and forces apply on the next
// frame; the particle pool keeps its size until the next Start.
func (l *Loop) SetTheme(t Theme) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.theme = t
	if l.running {
		count := l.active.ParticleCount
		l.active = t.scaled()
		l.active.ParticleCount = count
		l.pointer = l.springFor(l.active)
	}
}

func (l *Loop) springFor(t Theme) *Pointer {
	p := NewPointer(l.fps, t.SpringStiffness, t.SpringDamping)
	if l.pointer != nil {
		x, y := l.pointer.Position()
		p.Reset(x, y)
		if l.pointer.HasInput() {
			p.Set(l.pointer.Target())
		}
	}
	return p
}

func (l *Loop) Theme() Theme {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.theme
}

func (l *Loop) PointerMove(x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pointer != nil {
		l.pointer.Set(x, y)
	}
}

// Resize takes effect at the start of the next frame.
func (l *Loop) Resize(w, h int) {
	l.mu.Lock()
	l.resizeW, l.resizeH = max(w, 1), max(h, 1)
	l.resize = true
	l.mu.Unlock()
}

// SetLoudness feeds the orb scale. Values are clamped to [0,1].
func (l *Loop) SetLoudness(v float64) {
	l.mu.Lock()
	l.loudness = clamp01(v)
	l.mu.Unlock()
}

func (l *Loop) SetState(s appstate.State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Scale is the current orb scale multiplier.
func (l *Loop) Scale() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return orbScale(l.loudness, l.theme.OrbScaleMax)
}

func (l *Loop) Particles() []Particle {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Particle, len(l.particles))
	copy(out, l.particles)
	return out
}

func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func orbScale(loudness, maxScale float64) float64 {
	if maxScale < 1 {
		maxScale = 1
	}
	return 1 + (maxScale-1)*clamp01(loudness)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, 1))
}

func (l *Loop) step(time.Time) {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	if l.resize {
		l.canvas.Resize(l.resizeW, l.resizeH)
		l.resize = false
		w, h := l.canvas.Size()
		for i := range l.particles {
			l.particles[i].clamp(float64(w), float64(h))
		}
		l.canvas.Fill(l.active.Background)
	}
	w, h := l.canvas.Size()
	fw, fh := float64(w), float64(h)
	th := l.active

	px, py := l.pointer.Step()
	for i := range l.particles {
		l.particles[i].Update(px, py, th, fw, fh)
	}
	l.t += 0.01

	if th.TrailFade > 0 {
		bg := th.Background
		bg.A = uint8(math.Round(th.TrailFade * 255))
		l.canvas.Fill(bg)
	} else {
		l.canvas.Fill(th.Background)
	}
	if th.Variant == Fallback {
		drawAura(l.canvas, th, l.t)
	}
	if th.drawsGlow() && l.pointer.HasInput() {
		drawGlow(l.canvas, th, px, py)
	}
	if th.drawsOrb() {
		drawOrb(l.canvas, th, l.state, orbScale(l.loudness, th.OrbScaleMax), l.t)
	}
	for _, p := range l.particles {
		drawParticle(l.canvas, p)
	}

	l.frames++
	present := l.present
	var img *image.RGBA
	if present != nil {
		img = l.canvas.Snapshot()
	}
	l.frameID = l.sched.Request(l.step)
	l.mu.Unlock()

	if present != nil {
		present(img)
	}
}
