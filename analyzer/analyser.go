// Package analyzer turns a live microphone stream into one loudness
// sample per rendered frame.
package analyzer

import (
	"encoding/binary"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	FFTSize     = 256
	BinCount    = FFTSize / 2
	MinDecibels = -100.0
	MaxDecibels = -30.0
	Smoothing   = 0.8
)

// Analyser keeps the most recent FFTSize samples and reports smoothed
// byte-scaled magnitudes for the lower half of the spectrum.
type Analyser struct {
	mu sync.Mutex

	fft      *fourier.FFT
	ring     []float64
	pos      int
	buf      []float64
	coeffs   []complex128
	smoothed []float64
}

func NewAnalyser() *Analyser {
	return &Analyser{
		fft:      fourier.NewFFT(FFTSize),
		ring:     make([]float64, FFTSize),
		buf:      make([]float64, FFTSize),
		coeffs:   make([]complex128, FFTSize/2+1),
		smoothed: make([]float64, BinCount),
	}
}

// Write appends signed 16-bit little-endian mono PCM.
func (a *Analyser) Write(pcm []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		a.ring[a.pos] = float64(s) / 32768.0
		a.pos++
		if a.pos == FFTSize {
			a.pos = 0
		}
	}
}

// ByteFrequencyData fills dst (grown to BinCount if short) with the
// current spectrum and advances the smoothing state by one frame.
func (a *Analyser) ByteFrequencyData(dst []byte) []byte {
	if cap(dst) < BinCount {
		dst = make([]byte, BinCount)
	}
	dst = dst[:BinCount]

	a.mu.Lock()
	defer a.mu.Unlock()

	// oldest sample first
	n := copy(a.buf, a.ring[a.pos:])
	copy(a.buf[n:], a.ring[:a.pos])
	window.Blackman(a.buf)
	a.coeffs = a.fft.Coefficients(a.coeffs, a.buf)

	const scale = 255.0 / (MaxDecibels - MinDecibels)
	for k := 0; k < BinCount; k++ {
		mag := math.Hypot(real(a.coeffs[k]), imag(a.coeffs[k])) / FFTSize
		a.smoothed[k] = Smoothing*a.smoothed[k] + (1-Smoothing)*mag
		v := a.smoothed[k]
		if v <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(v)
		scaled := math.Floor(scale * (db - MinDecibels))
		switch {
		case scaled < 0:
			dst[k] = 0
		case scaled > 255:
			dst[k] = 255
		default:
			dst[k] = byte(scaled)
		}
	}
	return dst
}

// Loudness is the mean bin value over 128, capped at 1.
func Loudness(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	avg := float64(sum) / float64(len(bins))
	return math.Min(avg/128, 1)
}
