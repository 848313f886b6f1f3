package appstate

import "testing"

func TestAccentPerState(t *testing.T) {
	cases := []struct {
		s    State
		want RGBA
	}{
		{Idle, RGBA{139, 92, 246, 0.15}},
		{Listening, RGBA{239, 68, 68, 0.3}},
		{Processing, RGBA{139, 92, 246, 0.4}},
		{Speaking, RGBA{59, 130, 246, 0.3}},
	}
	for _, c := range cases {
		if got := c.s.Accent(); got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.s, got, c.want)
		}
	}
}

func TestStringUnknown(t *testing.T) {
	if got := State(42).String(); got != "unknown" {
		t.Errorf("got %q", got)
	}
}
