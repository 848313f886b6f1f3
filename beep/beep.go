package beep

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

// Enabled reports whether playback is on. Config reloads flip it.
func Enabled() bool { return !disabled.Load() }

func SetEnabled(on bool) { disabled.Store(!on) }

const (
	sampleRate = 44100

	// Haptic pulses: low buzz so short pulses read as taps, not tones
	pulseFreq   = 180
	pulseVolume = 0.45
)

var (
	clickSamples [2][]int16
	soundOnce    sync.Once
)

func initSound() {
	clickSamples[ClickSoft] = generateClick(sampleRate, ClickSoft)
	clickSamples[ClickSciFi] = generateClick(sampleRate, ClickSciFi)
	openOutput()
}

// Init renders the click samples and opens the output device. Playing
// calls it lazily, so calling it up front only hides the first delay.
func Init() {
	soundOnce.Do(initSound)
}

// PlayClick plays the chime for c. It returns at once.
func PlayClick(c Click) {
	if disabled.Load() {
		return
	}
	soundOnce.Do(initSound)
	go play(clickSamples[c&1])
}

// PlayPattern renders vibrate/pause segments as buzzes. It returns at once.
func PlayPattern(segments []time.Duration) {
	if disabled.Load() || len(segments) == 0 {
		return
	}
	soundOnce.Do(initSound)
	go play(generatePattern(sampleRate, segments))
}

type Click int

const (
	ClickSoft  Click = iota // glass tick, 800 -> 1200 Hz over 50ms
	ClickSciFi              // chirp, 2000 -> 400 Hz over 100ms
)

func (c Click) String() string {
	if c == ClickSciFi {
		return "sci-fi"
	}
	return "soft"
}

// ParseClick maps a config value to a Click; unknown names fall back to soft.
func ParseClick(name string) Click {
	if name == "sci-fi" || name == "scifi" {
		return ClickSciFi
	}
	return ClickSoft
}

// generateSweep renders a sine whose frequency and gain both ramp
// exponentially, the way an oscillator with exponential ramps sounds.
func generateSweep(sampleRate int, from, to float64, duration float64, gainFrom, gainTo float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n)
	var phase float64
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := from * math.Pow(to/from, p)
		gain := gainFrom * math.Pow(gainTo/gainFrom, p)
		phase += 2 * math.Pi * freq / float64(sampleRate)
		samples[i] = int16(math.Sin(phase) * 32767 * gain)
	}
	return samples
}

func generateClick(sampleRate int, c Click) []int16 {
	if c == ClickSciFi {
		return generateSweep(sampleRate, 2000, 400, 0.1, 0.25, 0.005)
	}
	return generateSweep(sampleRate, 800, 1200, 0.05, 0.25, 0.005)
}

// generatePattern renders alternating on/off segments. Even indices are
// buzzes, odd indices silence.
func generatePattern(sampleRate int, segments []time.Duration) []int16 {
	var out []int16
	for i, d := range segments {
		n := int(d.Seconds() * float64(sampleRate))
		if n <= 0 {
			continue
		}
		if i%2 == 1 {
			out = append(out, make([]int16, n)...)
			continue
		}
		for j := 0; j < n; j++ {
			t := float64(j) / float64(sampleRate)
			// short linear fade at both ends avoids clicks
			edge := math.Min(1, math.Min(float64(j), float64(n-j))/(float64(sampleRate)*0.002))
			out = append(out, int16(math.Sin(2*math.Pi*pulseFreq*t)*32767*pulseVolume*edge))
		}
	}
	return out
}

func toBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}
