package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Pointer smooths raw pointer input with a spring. Stiffness and damping
// follow the usual mass-spring form with unit mass, so 100/20 is
// critically damped.
type Pointer struct {
	spring   harmonica.Spring
	tx, ty   float64
	x, y     float64
	vx, vy   float64
	hasInput bool
}

func NewPointer(fps int, stiffness, damping float64) *Pointer {
	freq := math.Sqrt(stiffness)
	ratio := 1.0
	if stiffness > 0 {
		ratio = damping / (2 * math.Sqrt(stiffness))
	}
	return &Pointer{spring: harmonica.NewSpring(harmonica.FPS(fps), freq, ratio)}
}

// Reset places the pointer at rest on (x, y).
func (p *Pointer) Reset(x, y float64) {
	p.tx, p.ty = x, y
	p.x, p.y = x, y
	p.vx, p.vy = 0, 0
}

// Set updates the target. The smoothed position follows on Step.
func (p *Pointer) Set(x, y float64) {
	p.tx, p.ty = x, y
	p.hasInput = true
}

func (p *Pointer) HasInput() bool { return p.hasInput }

func (p *Pointer) Step() (x, y float64) {
	p.x, p.vx = p.spring.Update(p.x, p.vx, p.tx)
	p.y, p.vy = p.spring.Update(p.y, p.vy, p.ty)
	return p.x, p.y
}

func (p *Pointer) Position() (x, y float64) { return p.x, p.y }

func (p *Pointer) Target() (x, y float64) { return p.tx, p.ty }
