package audio

import (
	"encoding/binary"
	"math"
)

// encodePCM packs samples as little-endian int16, scaled by gain and
// clipped to the int16 range.
func encodePCM(samples []int16, gain float64) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(scale(s, gain)))
	}
	return out
}

// applyGain returns data scaled by gain. data is returned untouched for
// unity gain; otherwise a copy is made.
func applyGain(data []byte, gain float64) []byte {
	if gain == 1 || gain == 0 {
		return data
	}
	out := make([]byte, len(data)&^1)
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(binary.LittleEndian.Uint16(data[i:]))
		binary.LittleEndian.PutUint16(out[i:], uint16(scale(s, gain)))
	}
	return out
}

func scale(s int16, gain float64) int16 {
	if gain == 1 || gain == 0 {
		return s
	}
	v := math.Round(float64(s) * gain)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
