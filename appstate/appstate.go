// Package appstate holds the interaction state shared by the orchestrator,
// the render loop and the displays.
package appstate

type State int

const (
	Idle State = iota
	Listening
	Processing
	// Speaking is reserved for a reply phase; nothing enters it yet.
	Speaking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	case Speaking:
		return "speaking"
	}
	return "unknown"
}

// RGBA is an accent colour with straight (non-premultiplied) alpha in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Accent returns the surface tint for s.
func (s State) Accent() RGBA {
	switch s {
	case Listening:
		return RGBA{239, 68, 68, 0.3}
	case Processing:
		return RGBA{139, 92, 246, 0.4}
	case Speaking:
		return RGBA{59, 130, 246, 0.3}
	}
	return RGBA{139, 92, 246, 0.15}
}
