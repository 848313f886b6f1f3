package beep

import (
	"testing"
	"time"
)

func TestGeneratePatternLength(t *testing.T) {
	segs := []time.Duration{10 * time.Millisecond, 50 * time.Millisecond, 10 * time.Millisecond}
	got := generatePattern(1000, segs)
	if len(got) != 70 {
		t.Fatalf("got %d samples, want 70", len(got))
	}
	for i := 10; i < 60; i++ {
		if got[i] != 0 {
			t.Fatalf("sample %d in pause segment is %d, want 0", i, got[i])
		}
	}
}

func TestGeneratePatternSkipsEmpty(t *testing.T) {
	if got := generatePattern(1000, []time.Duration{0, 0}); len(got) != 0 {
		t.Fatalf("got %d samples, want 0", len(got))
	}
}

func TestClickDurations(t *testing.T) {
	if n := len(generateClick(sampleRate, ClickSoft)); n != int(sampleRate*0.05) {
		t.Errorf("soft click: %d samples", n)
	}
	if n := len(generateClick(sampleRate, ClickSciFi)); n != int(sampleRate*0.1) {
		t.Errorf("sci-fi click: %d samples", n)
	}
}

func TestSweepDecays(t *testing.T) {
	s := generateSweep(sampleRate, 800, 1200, 0.05, 0.25, 0.005)
	peak := func(xs []int16) int {
		m := 0
		for _, x := range xs {
			v := int(x)
			if v < 0 {
				v = -v
			}
			m = max(m, v)
		}
		return m
	}
	head, tail := peak(s[:200]), peak(s[len(s)-200:])
	if tail >= head {
		t.Errorf("tail peak %d not below head peak %d", tail, head)
	}
}

func TestParseClick(t *testing.T) {
	if ParseClick("sci-fi") != ClickSciFi || ParseClick("whatever") != ClickSoft {
		t.Fatal("unexpected click mapping")
	}
}

func TestSetEnabled(t *testing.T) {
	t.Cleanup(func() { SetEnabled(true) })
	SetEnabled(false)
	if Enabled() {
		t.Fatal("expected disabled")
	}
	SetEnabled(true)
	if !Enabled() {
		t.Fatal("expected enabled")
	}
}

func TestToBytesLittleEndian(t *testing.T) {
	b := toBytes([]int16{0x0102, -1})
	want := []byte{0x02, 0x01, 0xff, 0xff}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, b[i], want[i])
		}
	}
}
