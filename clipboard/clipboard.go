// Package clipboard copies transcripts to the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	cb "github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("no clipboard utility found")

// Available is false on hosts without a clipboard backend, e.g. Linux
// without xclip, xsel or wl-clipboard.
func Available() bool { return !cb.Unsupported }

// Copy places text on the clipboard. Surrounding whitespace is trimmed.
func Copy(text string) error {
	if !Available() {
		return ErrUnavailable
	}
	return cb.WriteAll(strings.TrimSpace(text))
}

func Read() (string, error) {
	if !Available() {
		return "", ErrUnavailable
	}
	return cb.ReadAll()
}
