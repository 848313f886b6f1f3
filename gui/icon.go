//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// trayIcon draws the 22px tray glyph: a violet core with a fading ring.
func trayIcon() []byte {
	const size = 22
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)
			switch {
			case dist < 4:
				img.Set(x, y, color.NRGBA{R: 139, G: 92, B: 246, A: 255})
			case dist < 9:
				a := uint8(255 * (1 - (dist-4)/5))
				img.Set(x, y, color.NRGBA{R: 59, G: 130, B: 246, A: a})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
