package haptic

import (
	"sync"
	"time"

	"aura/beep"
)

// BeepVibrator renders patterns as short audible buzzes. Desktops have no
// vibration motor; the pulse rhythm is what carries the feedback.
type BeepVibrator struct{}

func (BeepVibrator) Vibrate(pattern []time.Duration) error {
	if !beep.Enabled() {
		return ErrUnsupported
	}
	beep.PlayPattern(pattern)
	return nil
}

// FakeVibrator records every pattern it receives.
type FakeVibrator struct {
	mu    sync.Mutex
	calls [][]time.Duration
	Err   error
	Panic bool
}

func (f *FakeVibrator) Vibrate(pattern []time.Duration) error {
	if f.Panic {
		panic("vibrate")
	}
	f.mu.Lock()
	f.calls = append(f.calls, pattern)
	f.mu.Unlock()
	return f.Err
}

func (f *FakeVibrator) Calls() [][]time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]time.Duration, len(f.calls))
	copy(out, f.calls)
	return out
}
