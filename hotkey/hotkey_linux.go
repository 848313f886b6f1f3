//go:build linux

package hotkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// evdev input_event layout on 64-bit: 16 bytes of timeval, then type,
// code and value.
const (
	inputEventSize = 24
	evKey          = 1

	keyRelease = 0
	keyPress   = 1

	keyLCtrl  = 29
	keyRCtrl  = 97
	keyLShift = 42
	keyRShift = 54
)

var evdevKeys = map[string]uint16{
	"space": 57,
	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
}

var errNoKeyboards = errors.New("no keyboard devices found (is user in 'input' group?)")

// comboTracker follows modifier state on one keyboard. Auto-repeat
// events keep a key held.
type comboTracker struct {
	combo Combo
	key   uint16

	ctrl, shift, down bool
}

func newComboTracker(c Combo) *comboTracker {
	return &comboTracker{combo: c, key: evdevKeys[c.Key]}
}

func (t *comboTracker) modsHeld() bool {
	return (!t.combo.Ctrl || t.ctrl) && (!t.combo.Shift || t.shift)
}

// feed applies one key event and reports whether the combo went down or
// came back up.
func (t *comboTracker) feed(code uint16, value int32) (pressed, released bool) {
	held := func(cur bool) bool {
		switch value {
		case keyPress:
			return true
		case keyRelease:
			return false
		}
		return cur
	}
	switch code {
	case keyLCtrl, keyRCtrl:
		t.ctrl = held(t.ctrl)
	case keyLShift, keyRShift:
		t.shift = held(t.shift)
	case t.key:
		if value == keyPress && !t.down && t.modsHeld() {
			t.down = true
			return true, false
		}
		if value == keyRelease && t.down {
			t.down = false
			return false, true
		}
	}
	return false, false
}

type linuxHotkey struct {
	combo   Combo
	keydown chan struct{}
	keyup   chan struct{}

	mu    sync.Mutex
	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

func New(c Combo) Hotkey {
	return &linuxHotkey{
		combo:   c,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *linuxHotkey) Register() error {
	if _, ok := evdevKeys[h.combo.Key]; !ok {
		return fmt.Errorf("hotkey: unsupported key %q", h.combo.Key)
	}
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return errNoKeyboards
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stop = make(chan struct{})
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}
	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (h *linuxHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	tracker := newComboTracker(h.combo)

	for {
		n, err := f.Read(buf)
		if err != nil {
			return // closed by Unregister or device unplugged
		}
		select {
		case <-h.stop:
			return
		default:
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
				continue
			}
			code := binary.LittleEndian.Uint16(buf[i+18:])
			value := int32(binary.LittleEndian.Uint32(buf[i+20:]))
			pressed, released := tracker.feed(code, value)
			if pressed {
				notify(h.keydown)
			}
			if released {
				notify(h.keyup)
			}
		}
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *linuxHotkey) Keyup() <-chan struct{}   { return h.keyup }

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") && isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard treats devices with a wide key capability bitmap as
// keyboards; mice and power buttons report only a few bits.
func isKeyboard(eventName string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key"))
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", errNoKeyboards
	}
	for _, path := range keyboards {
		if f, err := os.Open(path); err == nil {
			f.Close()
			return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), path), nil
		}
	}
	return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
}
