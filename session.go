package main

import (
	"sync"

	"aura/analyzer"
	"aura/audio"
	"aura/beep"
	"aura/config"
	"aura/frame"
	"aura/haptic"
	"aura/log"
	"aura/orchestrator"
	"aura/render"
	"aura/speech"
)

type sessionOptions struct {
	cfg config.Config
	mic audio.Microphone
	// rec is nil when speech is disabled or the host has none.
	rec speech.Recognizer
	vib haptic.Vibrator

	// width and height are canvas pixels; logicalWidth is the surface
	// width in screen points, used to pick the auto variant.
	width, height int
	logicalWidth  int
	scale         float64

	present  render.PresentFunc
	isToggle func() bool
	sinks    []orchestrator.Sink
}

// session is one wired set of components behind an orchestrator.
type session struct {
	orch    *orchestrator.Orchestrator
	loop    *render.Loop
	engine  *analyzer.Engine
	speech  *speech.Controller
	haptics *haptic.Dispatcher
	sched   *frame.Ticker

	logicalWidth int
	scale        float64

	mu  sync.Mutex
	cfg config.Config
}

func newSession(o sessionOptions) *session {
	logger := log.Logger()
	sched := frame.NewTicker(o.cfg.Render.FPS)

	loopOpts := []render.Option{render.WithLogger(logger), render.WithFPS(o.cfg.Render.FPS)}
	if o.cfg.Render.Seed != 0 {
		loopOpts = append(loopOpts, render.WithSeed(o.cfg.Render.Seed))
	}
	theme := themeFor(o.cfg.Render, o.logicalWidth, o.scale)
	loop := render.NewLoop(sched, render.NewImageCanvas(o.width, o.height), theme, loopOpts...)
	if o.present != nil {
		loop.Present(o.present)
	}

	engine := analyzer.NewEngine(sched, logger)
	engine.OnStop(func(st analyzer.Stats) {
		log.CaptureMetrics(log.CaptureStats{
			Device:       st.Device,
			DurationS:    st.Duration.Seconds(),
			Frames:       st.Frames,
			PeakLoudness: st.Peak,
		})
	})

	hap := haptic.New(o.vib, logger)
	hap.SetEnabled(o.cfg.Haptics.Enabled)

	s := &session{
		loop:         loop,
		engine:       engine,
		speech:       speech.New(o.rec, logger),
		haptics:      hap,
		sched:        sched,
		logicalWidth: o.logicalWidth,
		scale:        o.scale,
		cfg:          o.cfg,
	}

	ocfg := orchestrator.DefaultConfig()
	ocfg.ProcessingDelay = o.cfg.Interaction.ProcessingDelay
	ocfg.VoiceThreshold = o.cfg.Audio.VoiceThreshold
	ocfg.IsToggle = o.isToggle
	ocfg.Chime = s.chime

	s.orch = orchestrator.New(ocfg, orchestrator.Deps{
		Speech:     s.speech,
		Microphone: o.mic,
		Capture:    engine,
		Surface:    loop,
		Haptics:    hap,
		Sink:       newFanout(o.sinks...),
		Logger:     logger,
	})
	return s
}

func (s *session) chime() {
	s.mu.Lock()
	h := s.cfg.Haptics
	s.mu.Unlock()
	if h.Sounds {
		beep.PlayClick(beep.ParseClick(h.Click))
	}
}

// applyConfig takes the reloadable settings from cfg: theme, mood and
// haptic toggles. Capture and speech settings need a restart.
func (s *session) applyConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.loop.SetTheme(themeFor(cfg.Render, s.logicalWidth, s.scale))
	s.haptics.SetEnabled(cfg.Haptics.Enabled)
	log.Info("config_reloaded")
}

func (s *session) Close() {
	s.orch.Close()
	s.sched.Stop()
}

func themeFor(rc config.RenderConfig, logicalWidth int, scale float64) render.Theme {
	v, ok := render.ParseVariant(rc.Variant)
	if !ok {
		v = render.VariantFor(logicalWidth)
	}
	t := render.DefaultTheme(v)
	t.Mood = render.ParseMood(rc.Mood)
	t.ParticleCount = rc.ParticleCount
	if scale > 0 {
		t.Scale = scale
	}
	return t
}
