// Package orchestrator owns the interaction state machine. It reacts to
// the mic control and to speech state, runs audio capture while
// listening and drives the render surface and haptics from the result.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"aura/appstate"
	"aura/audio"
	"aura/haptic"
	"aura/speech"

	"github.com/rs/zerolog"
)

const (
	DefaultProcessingDelay = 2000 * time.Millisecond
	DefaultVoiceThreshold  = 0.08
)

// Speech is the lifecycle-wrapped recognizer, normally *speech.Controller.
type Speech interface {
	Attach()
	Detach()
	State() speech.State
	Start() error
	Stop() error
	ResetTranscript()
	Subscribe(ctx context.Context) <-chan speech.State
}

// Capture is the loudness engine, normally *analyzer.Engine.
type Capture interface {
	Start(stream *audio.Stream, onSample func(float64)) error
	Stop()
}

// Surface is the render loop, normally *render.Loop.
type Surface interface {
	Start()
	Stop()
	SetLoudness(v float64)
	SetState(s appstate.State)
	PointerMove(x, y float64)
	Resize(w, h int)
}

// Haptics is normally *haptic.Dispatcher.
type Haptics interface {
	Init()
	Close()
	Trigger(p haptic.Pattern)
}

// Sink receives everything the user should see. Calls come from the
// orchestrator goroutine and must not block for long.
type Sink interface {
	StateChanged(from, to appstate.State)
	Transcript(text string)
	Loudness(level float64)
	CapabilityError(err error)
	NoVoiceWarning(active bool)
}

type nopSink struct{}

func (nopSink) StateChanged(appstate.State, appstate.State) {}
func (nopSink) Transcript(string)                           {}
func (nopSink) Loudness(float64)                            {}
func (nopSink) CapabilityError(error)                       {}
func (nopSink) NoVoiceWarning(bool)                         {}

type Config struct {
	ProcessingDelay time.Duration
	// VoiceThreshold is the loudness at or above which a silence tick
	// counts as voiced.
	VoiceThreshold float64
	// IsToggle reports whether the current session was started as a
	// toggle (auto-close applies) rather than held push-to-talk.
	IsToggle func() bool
	// Chime, if set, runs on every mic toggle.
	Chime func()
}

func DefaultConfig() Config {
	return Config{
		ProcessingDelay: DefaultProcessingDelay,
		VoiceThreshold:  DefaultVoiceThreshold,
	}
}

type Deps struct {
	Speech     Speech
	Microphone audio.Microphone
	Capture    Capture
	Surface    Surface
	Haptics    Haptics
	Sink       Sink
	Logger     zerolog.Logger
}

type micMode int

const (
	micToggle micMode = iota
	micOn
	micOff
)

type micEvent struct{ mode micMode }
type clickEvent struct{}

type micResult struct {
	gen    uint64
	stream *audio.Stream
	err    error
}

type Orchestrator struct {
	cfg     Config
	speech  Speech
	mic     audio.Microphone
	capture Capture
	surface Surface
	haptics Haptics
	sink    Sink
	log     zerolog.Logger

	events  chan any
	samples chan sample
	results chan micResult
	expired chan uint64

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
	acquiring sync.WaitGroup

	// owned by the loop goroutine
	state      appstate.State
	captureGen uint64
	timerGen   uint64
	timer      *time.Timer
	monitor    *silenceMonitor
	ticker     *time.Ticker
	peak       float64
	pending    string
	stopping   bool

	snapMu    sync.RWMutex
	snapState appstate.State
	snapText  string
	snapLevel float64
}

type sample struct {
	gen   uint64
	level float64
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.ProcessingDelay <= 0 {
		cfg.ProcessingDelay = DefaultProcessingDelay
	}
	if cfg.VoiceThreshold <= 0 {
		cfg.VoiceThreshold = DefaultVoiceThreshold
	}
	if cfg.IsToggle == nil {
		cfg.IsToggle = func() bool { return true }
	}
	sink := deps.Sink
	if sink == nil {
		sink = nopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		speech:  deps.Speech,
		mic:     deps.Microphone,
		capture: deps.Capture,
		surface: deps.Surface,
		haptics: deps.Haptics,
		sink:    sink,
		log:     deps.Logger.With().Str("component", "orchestrator").Logger(),
		events:  make(chan any, 16),
		samples: make(chan sample, 1),
		results: make(chan micResult),
		expired: make(chan uint64),
		ctx:     ctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		state:   appstate.Idle,
	}
}

// Start attaches speech, initialises haptics, starts the surface and
// begins processing events. Calling it again does nothing.
func (o *Orchestrator) Start() {
	o.startOnce.Do(func() {
		o.speech.Attach()
		o.haptics.Init()
		o.surface.SetState(o.state)
		o.surface.SetLoudness(0)
		o.surface.Start()
		updates := o.speech.Subscribe(o.ctx)
		go o.run(updates)
	})
}

// Close stops everything the orchestrator started. It is safe to call
// more than once and before Start.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() {
		o.startOnce.Do(func() {
			o.cancel()
			close(o.done)
		})
		close(o.quit)
		<-o.done
	})
}

// ToggleMic is the mic button: stop when listening, start otherwise.
func (o *Orchestrator) ToggleMic() { o.post(micEvent{micToggle}) }

// Listen starts listening unless already listening. Push-to-talk press.
func (o *Orchestrator) Listen() { o.post(micEvent{micOn}) }

// Release stops listening if listening. Push-to-talk release.
func (o *Orchestrator) Release() { o.post(micEvent{micOff}) }

// Click is a secondary control press.
func (o *Orchestrator) Click() { o.post(clickEvent{}) }

func (o *Orchestrator) PointerMove(x, y float64) { o.surface.PointerMove(x, y) }

func (o *Orchestrator) Resize(w, h int) { o.surface.Resize(w, h) }

func (o *Orchestrator) State() appstate.State {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapState
}

// Transcript is the last transcript surfaced after processing.
func (o *Orchestrator) Transcript() string {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapText
}

func (o *Orchestrator) Loudness() float64 {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapLevel
}

func (o *Orchestrator) post(ev any) {
	select {
	case o.events <- ev:
	case <-o.quit:
	}
}

func (o *Orchestrator) run(updates <-chan speech.State) {
	defer close(o.done)
	defer o.teardown()

	for {
		var tick <-chan time.Time
		if o.ticker != nil {
			tick = o.ticker.C
		}
		select {
		case <-o.quit:
			return
		case ev := <-o.events:
			switch ev := ev.(type) {
			case micEvent:
				o.handleMic(ev.mode)
			case clickEvent:
				o.haptics.Trigger(haptic.Click)
			}
		case st, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			o.handleSpeech(st)
		case s := <-o.samples:
			o.handleSample(s)
		case r := <-o.results:
			o.handleMicResult(r)
		case gen := <-o.expired:
			o.handleExpiry(gen)
		case <-tick:
			o.handleTick()
		}
	}
}

func (o *Orchestrator) teardown() {
	o.cancel()
	o.timerGen++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.stopCapture()
	o.speech.Detach()
	o.surface.Stop()
	o.haptics.Close()
	o.acquiring.Wait()
}

func (o *Orchestrator) handleMic(mode micMode) {
	st := o.speech.State()
	// A session whose recognizer already ended without a transcript is
	// still open until the user stops it.
	open := st.Listening || o.state == appstate.Listening
	switch {
	case mode == micOn && open, mode == micOff && !open:
		return
	}

	if open {
		o.chime()
		o.stopListening()
		o.haptics.Trigger(haptic.Success)
		return
	}

	if !st.Supported {
		o.sink.CapabilityError(speech.ErrUnsupported)
		return
	}
	o.chime()
	o.speech.ResetTranscript()
	if err := o.speech.Start(); err != nil {
		o.log.Warn().Err(err).Msg("start listening")
		return
	}
	// Listening is entered when the controller publishes the new state.
}

func (o *Orchestrator) chime() {
	if o.cfg.Chime != nil {
		o.cfg.Chime()
	}
}

// stopListening ends the listening session. With the recognizer still
// running it is asked to finish and the final snapshot decides between
// processing and idle; otherwise the session closes at once.
func (o *Orchestrator) stopListening() {
	if !o.speech.State().Listening {
		o.transition(appstate.Idle)
		return
	}
	o.stopping = true
	if err := o.speech.Stop(); err != nil {
		o.stopping = false
		o.log.Warn().Err(err).Msg("stop listening")
	}
}

func (o *Orchestrator) handleSpeech(st speech.State) {
	switch {
	case st.Listening && o.state != appstate.Listening:
		o.enterListening()
	case !st.Listening && o.state == appstate.Listening && st.Transcript != "":
		o.enterProcessing(st.Transcript)
	case !st.Listening && o.state == appstate.Listening && o.stopping:
		o.transition(appstate.Idle)
	}
}

func (o *Orchestrator) transition(to appstate.State) {
	from := o.state
	if from == to {
		return
	}
	o.state = to
	if to != appstate.Listening {
		o.stopping = false
	}
	o.timerGen++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if from == appstate.Listening {
		o.stopCapture()
	}
	o.snapMu.Lock()
	o.snapState = to
	o.snapMu.Unlock()

	o.surface.SetState(to)
	o.sink.StateChanged(from, to)
}

func (o *Orchestrator) enterListening() {
	o.transition(appstate.Listening)
	o.haptics.Trigger(haptic.Listening)

	o.monitor = newSilenceMonitor(o.cfg.IsToggle)
	o.ticker = time.NewTicker(tickInterval)
	o.peak = 0

	o.captureGen++
	gen := o.captureGen
	if o.mic == nil {
		return
	}
	o.acquiring.Add(1)
	go func() {
		defer o.acquiring.Done()
		stream, err := o.mic.Acquire(o.ctx)
		select {
		case o.results <- micResult{gen: gen, stream: stream, err: err}:
		case <-o.quit:
			if stream != nil {
				stream.Stop()
			}
		}
	}()
}

func (o *Orchestrator) enterProcessing(text string) {
	o.transition(appstate.Processing)
	o.haptics.Trigger(haptic.Thinking)

	gen := o.timerGen
	o.timer = time.AfterFunc(o.cfg.ProcessingDelay, func() {
		select {
		case o.expired <- gen:
		case <-o.quit:
		}
	})
	o.pending = text
}

func (o *Orchestrator) handleExpiry(gen uint64) {
	if gen != o.timerGen || o.state != appstate.Processing {
		return
	}
	text := o.pending
	o.pending = ""
	o.transition(appstate.Idle)

	o.snapMu.Lock()
	o.snapText = text
	o.snapMu.Unlock()
	o.sink.Transcript(text)
}

// stopCapture ends the capture session, invalidates pending acquisitions
// and resets loudness to zero.
func (o *Orchestrator) stopCapture() {
	o.captureGen++
	if o.ticker != nil {
		o.ticker.Stop()
		o.ticker = nil
	}
	if o.monitor != nil && o.monitor.Warned() {
		o.sink.NoVoiceWarning(false)
	}
	o.monitor = nil
	o.capture.Stop()
	o.setLoudness(0)
}

func (o *Orchestrator) setLoudness(v float64) {
	o.snapMu.Lock()
	o.snapLevel = v
	o.snapMu.Unlock()
	o.surface.SetLoudness(v)
	o.sink.Loudness(v)
}

func (o *Orchestrator) handleMicResult(r micResult) {
	if r.err != nil {
		if errors.Is(r.err, context.Canceled) {
			return
		}
		o.log.Warn().Err(r.err).Msg("microphone unavailable")
		return
	}
	if r.gen != o.captureGen || o.state != appstate.Listening {
		o.releaseLate(r.stream)
		return
	}
	gen := r.gen
	err := o.capture.Start(r.stream, func(level float64) {
		s := sample{gen: gen, level: level}
		select {
		case o.samples <- s:
		default:
			// keep only the newest sample
			select {
			case <-o.samples:
			default:
			}
			select {
			case o.samples <- s:
			default:
			}
		}
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("capture start")
		r.stream.Stop()
	}
}

// releaseLate disposes of a stream that resolved after listening ended.
// With no capture running it goes through the engine's own stop path; a
// newer session may hold the engine, so otherwise the stream is stopped
// directly.
func (o *Orchestrator) releaseLate(stream *audio.Stream) {
	if o.state != appstate.Listening {
		if err := o.capture.Start(stream, func(float64) {}); err == nil {
			o.capture.Stop()
			return
		}
	}
	stream.Stop()
}

func (o *Orchestrator) handleSample(s sample) {
	if s.gen != o.captureGen || o.state != appstate.Listening {
		return
	}
	if s.level > o.peak {
		o.peak = s.level
	}
	o.setLoudness(s.level)
}

func (o *Orchestrator) handleTick() {
	if o.monitor == nil {
		return
	}
	voiced := o.peak >= o.cfg.VoiceThreshold
	o.peak = 0
	switch o.monitor.Tick(voiced) {
	case SilenceWarn:
		o.log.Info().Msg("no voice detected")
		o.sink.NoVoiceWarning(true)
		o.haptics.Trigger(haptic.Error)
	case SilenceRepeat:
		o.haptics.Trigger(haptic.Error)
	case SilenceWarnClear:
		o.sink.NoVoiceWarning(false)
	case SilenceAutoClose:
		o.log.Info().Msg("auto-closing silent session")
		if o.monitor.Warned() {
			o.sink.NoVoiceWarning(false)
		}
		o.monitor = nil
		o.stopListening()
	}
}
