// Package hotkey watches a global key combination for push-to-talk.
package hotkey

import (
	"fmt"
	"strings"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// Combo is a set of modifiers plus one key. Key is "space" or a letter.
type Combo struct {
	Ctrl  bool
	Shift bool
	Key   string
}

var DefaultCombo = Combo{Ctrl: true, Shift: true, Key: "space"}

// ParseCombo reads combinations such as "ctrl+shift+space" or "ctrl+k".
// At least one modifier is required.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	for _, part := range strings.Split(strings.ToLower(s), "+") {
		part = strings.TrimSpace(part)
		switch {
		case part == "ctrl" || part == "control":
			c.Ctrl = true
		case part == "shift":
			c.Shift = true
		case part == "space" || (len(part) == 1 && part[0] >= 'a' && part[0] <= 'z'):
			if c.Key != "" {
				return Combo{}, fmt.Errorf("hotkey %q: more than one key", s)
			}
			c.Key = part
		default:
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, part)
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q: no key", s)
	}
	if !c.Ctrl && !c.Shift {
		return Combo{}, fmt.Errorf("hotkey %q: needs ctrl or shift", s)
	}
	return c, nil
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, c.Key), "+")
}
