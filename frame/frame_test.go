package frame

import (
	"testing"
	"time"
)

func TestManualStepFiresOnce(t *testing.T) {
	m := NewManual()
	calls := 0
	m.Request(func(time.Time) { calls++ })
	if n := m.Step(time.Now()); n != 1 {
		t.Fatalf("fired %d, want 1", n)
	}
	m.Step(time.Now())
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	id := m.Request(func(time.Time) { t.Fatal("cancelled callback fired") })
	m.Cancel(id)
	m.Cancel(id)
	m.Cancel(999)
	if m.Pending() != 0 {
		t.Fatalf("pending = %d", m.Pending())
	}
	m.Step(time.Now())
}

func TestManualRequestFromCallbackWaits(t *testing.T) {
	m := NewManual()
	frames := 0
	var loop Callback
	loop = func(time.Time) {
		frames++
		m.Request(loop)
	}
	m.Request(loop)
	for i := 0; i < 5; i++ {
		m.Step(time.Now())
	}
	if frames != 5 {
		t.Fatalf("frames = %d, want 5", frames)
	}
	if m.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", m.Pending())
	}
}

func TestTickerFires(t *testing.T) {
	tk := NewTicker(200)
	defer tk.Stop()

	fired := make(chan struct{})
	tk.Request(func(time.Time) { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestTickerCancel(t *testing.T) {
	tk := NewTicker(200)
	defer tk.Stop()

	id := tk.Request(func(time.Time) { t.Error("cancelled callback fired") })
	tk.Cancel(id)
	fired := make(chan struct{})
	tk.Request(func(time.Time) { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestTickerStopIdempotent(t *testing.T) {
	tk := NewTicker(60)
	tk.Stop()
	tk.Stop()
}
