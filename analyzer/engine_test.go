package analyzer

import (
	"context"
	"testing"
	"time"

	"aura/audio"
	"aura/frame"

	"github.com/rs/zerolog"
)

func acquire(t *testing.T, amp float64) *audio.Stream {
	t.Helper()
	mic := audio.NewFakeMicrophone(audio.NewToneContext(1000, amp, 5*time.Second))
	s, err := mic.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEngineSamplesOncePerFrame(t *testing.T) {
	sched := frame.NewManual()
	e := NewEngine(sched, zerolog.Nop())
	s := acquire(t, 0.5)

	var samples []float64
	if err := e.Start(s, func(l float64) { samples = append(samples, l) }); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	for i := 0; i < 3; i++ {
		sched.Step(time.Now())
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	for _, l := range samples {
		if l < 0 || l > 1 {
			t.Fatalf("sample %v out of range", l)
		}
	}
}

func TestEngineReportsToneLoudness(t *testing.T) {
	sched := frame.NewManual()
	e := NewEngine(sched, zerolog.Nop())
	s := acquire(t, 0.8)

	var last float64
	if err := e.Start(s, func(l float64) { last = l }); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	deadline := time.After(2 * time.Second)
	for last == 0 {
		select {
		case <-deadline:
			t.Fatal("loudness never rose above 0")
		case <-time.After(20 * time.Millisecond):
		}
		sched.Step(time.Now())
	}
}

func TestEngineStopReleasesEverything(t *testing.T) {
	sched := frame.NewManual()
	e := NewEngine(sched, zerolog.Nop())
	s := acquire(t, 0.5)

	calls := 0
	if err := e.Start(s, func(float64) { calls++ }); err != nil {
		t.Fatal(err)
	}
	e.Stop()

	if e.Active() {
		t.Fatal("engine still active")
	}
	if s.Live() {
		t.Fatal("stream still live after Stop")
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending frames = %d, want 0", sched.Pending())
	}
	sched.Step(time.Now())
	if calls != 0 {
		t.Fatalf("got %d samples after Stop", calls)
	}
	e.Stop()
}

func TestEngineStopWithoutStart(t *testing.T) {
	e := NewEngine(frame.NewManual(), zerolog.Nop())
	e.Stop()
	e.Stop()
}

func TestEngineSupersedingStart(t *testing.T) {
	sched := frame.NewManual()
	e := NewEngine(sched, zerolog.Nop())
	first := acquire(t, 0.5)
	second := acquire(t, 0.5)
	defer e.Stop()

	var a, b int
	if err := e.Start(first, func(float64) { a++ }); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(second, func(float64) { b++ }); err != nil {
		t.Fatal(err)
	}
	if first.Live() {
		t.Fatal("superseded stream still live")
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending frames = %d, want 1", sched.Pending())
	}
	sched.Step(time.Now())
	if a != 0 || b != 1 {
		t.Fatalf("first=%d second=%d, want 0 and 1", a, b)
	}
}

func TestEngineRejectsStoppedStream(t *testing.T) {
	e := NewEngine(frame.NewManual(), zerolog.Nop())
	s := acquire(t, 0.5)
	s.Stop()
	if err := e.Start(s, func(float64) {}); err != ErrStreamClosed {
		t.Fatalf("got %v, want ErrStreamClosed", err)
	}
}

func TestEngineStopHookReportsStats(t *testing.T) {
	sched := frame.NewManual()
	e := NewEngine(sched, zerolog.Nop())
	s := acquire(t, 0.5)

	var got []Stats
	e.OnStop(func(st Stats) { got = append(got, st) })
	if err := e.Start(s, func(float64) {}); err != nil {
		t.Fatal(err)
	}
	sched.Step(time.Now())
	sched.Step(time.Now())
	e.Stop()
	e.Stop()

	if len(got) != 1 {
		t.Fatalf("hook ran %d times, want 1", len(got))
	}
	if got[0].Frames != 2 || got[0].Device != "fake" {
		t.Errorf("stats = %+v", got[0])
	}
}
