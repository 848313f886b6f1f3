// Package haptic maps named feedback patterns onto a vibration backend.
// Missing or failing backends degrade to a logged no-op.
package haptic

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pattern is a vibration pattern in milliseconds. A single element is one
// pulse; longer patterns alternate vibrate and pause.
type Pattern []int

var (
	Click     = Pattern{10}
	Success   = Pattern{10, 50, 10}
	Error     = Pattern{20, 50, 20, 50, 20}
	Thinking  = Pattern{5, 10, 5, 10, 5}
	Listening = Pattern{15, 30, 15}
)

// Durations returns a fresh copy of p as durations.
func (p Pattern) Durations() []time.Duration {
	out := make([]time.Duration, len(p))
	for i, ms := range p {
		out[i] = time.Duration(ms) * time.Millisecond
	}
	return out
}

// FromDurations converts a vibrator pattern back to milliseconds.
func FromDurations(d []time.Duration) Pattern {
	p := make(Pattern, len(d))
	for i, v := range d {
		p[i] = int(v / time.Millisecond)
	}
	return p
}

func (p Pattern) String() string {
	switch {
	case equal(p, Click):
		return "click"
	case equal(p, Success):
		return "success"
	case equal(p, Error):
		return "error"
	case equal(p, Thinking):
		return "thinking"
	case equal(p, Listening):
		return "listening"
	}
	return fmt.Sprint([]int(p))
}

func equal(a, b Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var ErrUnsupported = errors.New("haptics not supported")

// Vibrator is the platform vibration capability. Vibrate must not block
// for the length of the pattern.
type Vibrator interface {
	Vibrate(pattern []time.Duration) error
}

type Dispatcher struct {
	vib Vibrator
	log zerolog.Logger

	mu      sync.Mutex
	enabled bool
	ready   bool
	closed  bool
}

// New returns a dispatcher over v. A nil v means the platform has no
// vibration support; every trigger is then a no-op.
func New(v Vibrator, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		vib:     v,
		log:     logger.With().Str("component", "haptic").Logger(),
		enabled: true,
	}
}

func (d *Dispatcher) Init() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ready = !d.closed
	if d.vib == nil {
		d.log.Debug().Msg("no vibration backend")
	}
}

// SetEnabled toggles output without tearing the dispatcher down.
func (d *Dispatcher) SetEnabled(on bool) {
	d.mu.Lock()
	d.enabled = on
	d.mu.Unlock()
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.ready = false
	d.mu.Unlock()
}

// Trigger fires p once. It never panics and never returns an error.
func (d *Dispatcher) Trigger(p Pattern) {
	d.mu.Lock()
	ok := d.ready && d.enabled && d.vib != nil
	v := d.vib
	d.mu.Unlock()
	if !ok || len(p) == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Warn().Interface("panic", r).Str("pattern", p.String()).Msg("vibrate panicked")
		}
	}()
	if err := v.Vibrate(p.Durations()); err != nil {
		if errors.Is(err, ErrUnsupported) {
			d.log.Debug().Str("pattern", p.String()).Msg("vibrate unsupported")
			return
		}
		d.log.Warn().Err(err).Str("pattern", p.String()).Msg("vibrate failed")
	}
}
