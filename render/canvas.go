package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

type Blend int

const (
	BlendOver Blend = iota
	BlendScreen
)

// Stop is one colour stop of a radial gradient, Offset in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Canvas is the drawing surface a Loop owns.
type Canvas interface {
	Size() (w, h int)
	Resize(w, h int)
	// Fill composites c over the whole surface. An opaque c clears it.
	Fill(c color.NRGBA)
	FillCircle(x, y, r float64, c color.NRGBA)
	RadialGradient(x, y, r float64, stops []Stop, mode Blend)
	// Snapshot returns a copy of the current pixels.
	Snapshot() *image.RGBA
}

// ImageCanvas rasterises into an in-memory RGBA image.
type ImageCanvas struct {
	img *image.RGBA
	ras vector.Rasterizer
}

func NewImageCanvas(w, h int) *ImageCanvas {
	return &ImageCanvas{img: image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))}
}

func (c *ImageCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the surface; contents are lost.
func (c *ImageCanvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if cw, ch := c.Size(); cw == w && ch == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (c *ImageCanvas) Fill(col color.NRGBA) {
	op := draw.Over
	if col.A == 0xff {
		op = draw.Src
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, op)
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

func (c *ImageCanvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if r <= 0 || col.A == 0 {
		return
	}
	w, h := c.Size()
	c.ras.Reset(w, h)
	k := kappa * r
	f := func(v float64) float32 { return float32(v) }
	c.ras.MoveTo(f(x+r), f(y))
	c.ras.CubeTo(f(x+r), f(y+k), f(x+k), f(y+r), f(x), f(y+r))
	c.ras.CubeTo(f(x-k), f(y+r), f(x-r), f(y+k), f(x-r), f(y))
	c.ras.CubeTo(f(x-r), f(y-k), f(x-k), f(y-r), f(x), f(y-r))
	c.ras.CubeTo(f(x+k), f(y-r), f(x+r), f(y-k), f(x+r), f(y))
	c.ras.ClosePath()
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *ImageCanvas) RadialGradient(cx, cy, r float64, stops []Stop, mode Blend) {
	if r <= 0 || len(stops) == 0 {
		return
	}
	b := c.img.Bounds()
	x0 := max(b.Min.X, int(math.Floor(cx-r)))
	y0 := max(b.Min.Y, int(math.Floor(cy-r)))
	x1 := min(b.Max.X, int(math.Ceil(cx+r))+1)
	y1 := min(b.Max.Y, int(math.Ceil(cy+r))+1)

	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		row := c.img.Pix[c.img.PixOffset(x0, y):]
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			t := math.Sqrt(dx*dx+dy*dy) / r
			if t >= 1 {
				continue
			}
			sr, sg, sb, sa := sample(stops, t)
			if sa <= 0 {
				continue
			}
			i := (x - x0) * 4
			row[i+0] = blend(row[i+0], sr, sa, mode)
			row[i+1] = blend(row[i+1], sg, sa, mode)
			row[i+2] = blend(row[i+2], sb, sa, mode)
			if mode == BlendOver {
				da := float64(row[i+3]) / 255
				row[i+3] = uint8(math.Round((sa + da*(1-sa)) * 255))
			}
		}
	}
}

// sample interpolates straight-alpha stops at t. Channels are in [0,1].
func sample(stops []Stop, t float64) (r, g, b, a float64) {
	lo, hi := stops[0], stops[len(stops)-1]
	if t <= lo.Offset {
		return norm(lo.Color)
	}
	if t >= hi.Offset {
		return norm(hi.Color)
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			lo, hi = stops[i-1], stops[i]
			break
		}
	}
	span := hi.Offset - lo.Offset
	f := 0.0
	if span > 0 {
		f = (t - lo.Offset) / span
	}
	r0, g0, b0, a0 := norm(lo.Color)
	r1, g1, b1, a1 := norm(hi.Color)
	return r0 + (r1-r0)*f, g0 + (g1-g0)*f, b0 + (b1-b0)*f, a0 + (a1-a0)*f
}

func norm(c color.NRGBA) (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// blend composites one premultiplied-over-opaque channel.
func blend(dst uint8, src, alpha float64, mode Blend) uint8 {
	d := float64(dst) / 255
	var out float64
	switch mode {
	case BlendScreen:
		out = d + alpha*src*(1-d)
	default:
		out = src*alpha + d*(1-alpha)
	}
	return uint8(math.Round(math.Max(0, math.Min(out, 1)) * 255))
}

func (c *ImageCanvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}
