package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerConvergesWithoutOvershoot(t *testing.T) {
	p := NewPointer(60, 100, 20)
	p.Reset(0, 0)
	p.Set(100, 50)

	var x, y float64
	for i := 0; i < 240; i++ {
		x, y = p.Step()
		assert.LessOrEqual(t, x, 100.0+1e-6, "overshoot at step %d", i)
	}
	assert.InDelta(t, 100, x, 0.5)
	assert.InDelta(t, 50, y, 0.5)
}

func TestPointerLags(t *testing.T) {
	p := NewPointer(60, 100, 20)
	p.Reset(0, 0)
	p.Set(100, 0)
	x, _ := p.Step()
	assert.Greater(t, x, 0.0)
	assert.Less(t, x, 50.0, "first step should be a fraction of the jump")
}

func TestPointerRestsWithoutInput(t *testing.T) {
	p := NewPointer(60, 150, 25)
	p.Reset(10, 20)
	for i := 0; i < 10; i++ {
		p.Step()
	}
	x, y := p.Position()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
	assert.False(t, p.HasInput())
}
