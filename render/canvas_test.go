package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillOpaqueClears(t *testing.T) {
	c := NewImageCanvas(4, 4)
	c.Fill(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img := c.Snapshot()
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(2, 2))
}

func TestFillCircleCoversCentre(t *testing.T) {
	c := NewImageCanvas(20, 20)
	c.Fill(color.NRGBA{A: 255})
	c.FillCircle(10, 10, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img := c.Snapshot()
	assert.Equal(t, uint8(255), img.RGBAAt(10, 10).R)
	assert.Equal(t, uint8(0), img.RGBAAt(1, 1).R)
}

func TestRadialGradientScreenBrightens(t *testing.T) {
	c := NewImageCanvas(40, 40)
	c.Fill(color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	c.RadialGradient(20, 20, 10, []Stop{
		{0, color.NRGBA{R: 255, A: 255}},
		{1, color.NRGBA{R: 255, A: 0}},
	}, BlendScreen)
	img := c.Snapshot()
	centre := img.RGBAAt(20, 20)
	assert.Greater(t, centre.R, uint8(200))
	assert.Equal(t, uint8(50), centre.G, "screen with black must not change a channel")
	assert.Equal(t, uint8(50), img.RGBAAt(0, 0).R, "outside radius untouched")
}

func TestResizeReallocates(t *testing.T) {
	c := NewImageCanvas(10, 10)
	c.Resize(30, 5)
	w, h := c.Size()
	require.Equal(t, 30, w)
	require.Equal(t, 5, h)
	c.Resize(0, -1)
	w, h = c.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSnapshotIsCopy(t *testing.T) {
	c := NewImageCanvas(2, 2)
	snap := c.Snapshot()
	c.Fill(color.NRGBA{R: 255, A: 255})
	assert.Equal(t, uint8(0), snap.RGBAAt(0, 0).R)
}
