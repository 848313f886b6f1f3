package hotkey

import (
	"sync/atomic"
	"time"
)

type Mode string

const (
	ModePTT    Mode = "ptt"
	ModeToggle Mode = "toggle"
)

// StartEvent asks for listening to begin.
type StartEvent struct {
	Mode Mode
}

// Hybrid turns one key combination into tap-to-toggle and hold-to-talk.
// Listening starts on key down; whether it ends on this release or the
// next press depends on how long the key was held.
type Hybrid struct {
	startCh chan StartEvent
	stopCh  chan struct{}
	toggle  atomic.Bool
}

// NewHybrid wraps hk. A press held longer than longPress is push-to-talk.
func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan StartEvent, 1),
		stopCh:  make(chan struct{}, 1),
	}
	h.toggle.Store(true)
	go h.run(hk, longPress)
	return h
}

func (h *Hybrid) Start() <-chan StartEvent { return h.startCh }

// StopChan is signalled when listening should end, in either mode.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current session is a tap-toggled one.
// It turns false once a press outlasts the long-press threshold.
func (h *Hybrid) IsToggle() bool { return h.toggle.Load() }

type hybridState int

const (
	stIdle hybridState = iota
	stToggleListening
)

func (h *Hybrid) stop() {
	select {
	case h.stopCh <- struct{}{}:
	default:
	}
}

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	state := stIdle
	for {
		switch state {
		case stIdle:
			<-hk.Keydown()
			h.toggle.Store(true)
			h.startCh <- StartEvent{Mode: ModeToggle}
			timer := time.NewTimer(longPress)
			select {
			case <-timer.C:
				// held: listen until release
				h.toggle.Store(false)
				<-hk.Keyup()
				h.stop()
				state = stIdle
			case <-hk.Keyup():
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				state = stToggleListening
			}
		case stToggleListening:
			// the next press ends the session on its release
			<-hk.Keydown()
			<-hk.Keyup()
			h.stop()
			state = stIdle
		}
	}
}
