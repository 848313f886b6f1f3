package audio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrSelectionCancelled is returned when the picker is dismissed with Esc.
var ErrSelectionCancelled = errors.New("device selection cancelled")

type pickAction int

const (
	pickMove pickAction = iota
	pickConfirm
	pickCancel
	pickInterrupt
)

// pickerStep applies one keypress to the cursor.
func pickerStep(key []byte, cursor, n int) (int, pickAction) {
	switch {
	case len(key) == 1:
		switch key[0] {
		case '\r', '\n':
			return cursor, pickConfirm
		case 0x1b, 'q':
			return cursor, pickCancel
		case 3: // Ctrl+C
			return cursor, pickInterrupt
		case 'j':
			return min(cursor+1, n-1), pickMove
		case 'k':
			return max(cursor-1, 0), pickMove
		}
	case len(key) == 3 && key[0] == 0x1b && key[1] == '[':
		switch key[2] {
		case 'A':
			return max(cursor-1, 0), pickMove
		case 'B':
			return min(cursor+1, n-1), pickMove
		}
	}
	return cursor, pickMove
}

func renderPicker(devices []DeviceInfo, cursor int, current string) string {
	var b strings.Builder
	b.WriteString("\r\x1b[J")
	b.WriteString("Microphone for aura (↑/↓ or j/k, Enter to save, Esc to keep):\r\n\r\n")
	for i, d := range devices {
		tag := ""
		if d.Name == current {
			tag += " \x1b[2m(current)\x1b[0m"
		}
		if IsBluetooth(d.Name) {
			tag += " \x1b[33m[⚠ Bluetooth: lower quality]\x1b[0m"
		}
		if i == cursor {
			fmt.Fprintf(&b, "  \x1b[1;35m● %s\x1b[0m%s\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(&b, "    %s%s\r\n", d.Name, tag)
		}
	}
	return b.String()
}

// SelectDevice shows a terminal picker starting on the device named
// current and returns the chosen one. A single device is returned
// without prompting.
func SelectDevice(ctx Context, current string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("no capture devices found")
	case 1:
		return &devices[0], nil
	}

	cursor := 0
	for i, d := range devices {
		if d.Name == current {
			cursor = i
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Print(renderPicker(devices, cursor, current))

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		var action pickAction
		cursor, action = pickerStep(buf[:n], cursor, len(devices))
		switch action {
		case pickConfirm:
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case pickCancel:
			fmt.Print("\r\n")
			return nil, ErrSelectionCancelled
		case pickInterrupt:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		}
		fmt.Printf("\x1b[%dA", len(devices)+2)
		fmt.Print(renderPicker(devices, cursor, current))
	}
}
