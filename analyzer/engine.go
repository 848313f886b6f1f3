package analyzer

import (
	"errors"
	"sync"
	"time"

	"aura/audio"
	"aura/frame"

	"github.com/rs/zerolog"
)

var ErrStreamClosed = errors.New("analyzer: stream is not live")

// Engine owns at most one capture session: a stream, the analyser fed by
// it and the pending frame callback that samples loudness.
type Engine struct {
	sched frame.Scheduler
	log   zerolog.Logger

	mu       sync.Mutex
	active   bool
	session  uint64
	stream   *audio.Stream
	analyser *Analyser
	frameID  frame.ID
	onSample func(float64)
	bins     []byte

	started time.Time
	frames  int
	peak    float64
	onStop  func(Stats)
}

// Stats describes a finished capture session.
type Stats struct {
	Device   string
	Frames   int
	Peak     float64
	Duration time.Duration
}

func NewEngine(sched frame.Scheduler, logger zerolog.Logger) *Engine {
	return &Engine{
		sched: sched,
		log:   logger.With().Str("component", "engine").Logger(),
		bins:  make([]byte, BinCount),
	}
}

// Start begins sampling stream. A session already running is stopped
// first. onSample runs once per frame with a value in [0,1].
func (e *Engine) Start(stream *audio.Stream, onSample func(float64)) error {
	if stream == nil || !stream.Live() {
		return ErrStreamClosed
	}
	e.Stop()

	a := NewAnalyser()
	stream.Listen(func(data []byte, _ uint32) { a.Write(data) })

	e.mu.Lock()
	e.session++
	e.active = true
	e.stream = stream
	e.analyser = a
	e.onSample = onSample
	e.started = time.Now()
	e.frames = 0
	e.peak = 0
	e.frameID = e.sched.Request(e.tick(e.session))
	e.mu.Unlock()

	e.log.Debug().Str("device", stream.DeviceName()).Msg("capture_start")
	return nil
}

func (e *Engine) tick(session uint64) frame.Callback {
	return func(time.Time) {
		e.mu.Lock()
		if !e.active || e.session != session {
			e.mu.Unlock()
			return
		}
		e.bins = e.analyser.ByteFrequencyData(e.bins)
		level := Loudness(e.bins)
		e.frames++
		e.peak = max(e.peak, level)
		cb := e.onSample
		e.frameID = e.sched.Request(e.tick(session))
		e.mu.Unlock()

		if cb != nil {
			cb(level)
		}
	}
}

// Stop releases the session. Calling it with nothing running is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.sched.Cancel(e.frameID)
	s := e.stream
	frames, peak, dur := e.frames, e.peak, time.Since(e.started)
	e.active = false
	e.stream = nil
	e.analyser = nil
	e.onSample = nil
	e.frameID = 0
	hook := e.onStop
	e.mu.Unlock()

	s.Stop()
	e.log.Debug().
		Int("frames", frames).
		Float64("peak", peak).
		Float64("duration_s", dur.Seconds()).
		Msg("capture_stop")
	if hook != nil {
		hook(Stats{Device: s.DeviceName(), Frames: frames, Peak: peak, Duration: dur})
	}
}

// OnStop registers fn to receive the stats of every session that ends.
func (e *Engine) OnStop(fn func(Stats)) {
	e.mu.Lock()
	e.onStop = fn
	e.mu.Unlock()
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
