package haptic

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newDispatcher(v Vibrator) *Dispatcher {
	d := New(v, zerolog.Nop())
	d.Init()
	return d
}

func TestTriggerPassesPattern(t *testing.T) {
	fv := &FakeVibrator{}
	d := newDispatcher(fv)

	d.Trigger(Success)

	calls := fv.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	want := []time.Duration{10 * time.Millisecond, 50 * time.Millisecond, 10 * time.Millisecond}
	for i := range want {
		if calls[0][i] != want[i] {
			t.Fatalf("segment %d = %v, want %v", i, calls[0][i], want[i])
		}
	}
}

func TestPredefinedPatterns(t *testing.T) {
	cases := map[string]Pattern{
		"click":     {10},
		"success":   {10, 50, 10},
		"error":     {20, 50, 20, 50, 20},
		"thinking":  {5, 10, 5, 10, 5},
		"listening": {15, 30, 15},
	}
	all := map[string]Pattern{"click": Click, "success": Success, "error": Error, "thinking": Thinking, "listening": Listening}
	for name, want := range cases {
		if !equal(all[name], want) {
			t.Errorf("%s = %v, want %v", name, all[name], want)
		}
		if all[name].String() != name {
			t.Errorf("String() = %q, want %q", all[name].String(), name)
		}
	}
}

func TestDurationsIsCopy(t *testing.T) {
	d := Error.Durations()
	d[0] = time.Hour
	if Error[0] != 20 {
		t.Fatal("predefined pattern mutated through Durations")
	}
}

func TestFromDurationsNamesPattern(t *testing.T) {
	for _, p := range []Pattern{Click, Success, Error, Thinking, Listening} {
		if got := FromDurations(p.Durations()).String(); got != p.String() {
			t.Errorf("FromDurations(%v) = %s, want %s", p, got, p)
		}
	}
	if got := FromDurations([]time.Duration{7 * time.Millisecond}).String(); got != "[7]" {
		t.Errorf("unnamed pattern = %s, want [7]", got)
	}
}

func TestNilVibratorIsNoop(t *testing.T) {
	d := newDispatcher(nil)
	d.Trigger(Click) // must not panic
}

func TestErrorsSwallowed(t *testing.T) {
	d := newDispatcher(&FakeVibrator{Err: errors.New("boom")})
	d.Trigger(Click)
	d = newDispatcher(&FakeVibrator{Err: ErrUnsupported})
	d.Trigger(Click)
}

func TestPanicRecovered(t *testing.T) {
	d := newDispatcher(&FakeVibrator{Panic: true})
	d.Trigger(Thinking)
}

func TestNoTriggerBeforeInitOrAfterClose(t *testing.T) {
	fv := &FakeVibrator{}
	d := New(fv, zerolog.Nop())
	d.Trigger(Click)
	d.Init()
	d.Close()
	d.Trigger(Click)
	d.Init()
	d.Trigger(Click)
	if n := len(fv.Calls()); n != 0 {
		t.Fatalf("got %d calls, want 0", n)
	}
}

func TestSetEnabled(t *testing.T) {
	fv := &FakeVibrator{}
	d := newDispatcher(fv)
	d.SetEnabled(false)
	d.Trigger(Click)
	d.SetEnabled(true)
	d.Trigger(Click)
	if n := len(fv.Calls()); n != 1 {
		t.Fatalf("got %d calls, want 1", n)
	}
}
