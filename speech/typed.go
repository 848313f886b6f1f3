package speech

import (
	"context"
	"strings"
	"sync"
)

// TypedRecognizer produces transcripts from text it is handed, one
// keystroke or line at a time. It stands in for a speech engine on hosts
// without one and drives the headless test mode.
type TypedRecognizer struct {
	mu     sync.Mutex
	ch     chan string
	text   strings.Builder
	cancel context.CancelFunc
}

func NewTypedRecognizer() *TypedRecognizer { return &TypedRecognizer{} }

func (r *TypedRecognizer) Supported() bool { return true }

func (r *TypedRecognizer) Start(ctx context.Context, continuous bool) (<-chan string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endLocked()
	r.text.Reset()
	ch := make(chan string, 256)
	r.ch = ch
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go func() {
		<-ctx.Done()
		r.mu.Lock()
		if r.ch == ch {
			r.endLocked()
		}
		r.mu.Unlock()
	}()
	return ch, nil
}

func (r *TypedRecognizer) Stop() error {
	r.End()
	return nil
}

// Active reports whether a recognition session is open.
func (r *TypedRecognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch != nil
}

// Text is the transcript of the current session so far.
func (r *TypedRecognizer) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

// Append adds heard text and emits the updated transcript.
func (r *TypedRecognizer) Append(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil || s == "" {
		return
	}
	r.text.WriteString(s)
	r.emitLocked()
}

// Say replaces the transcript. Words are separated from any earlier
// utterance in the session by a space.
func (r *TypedRecognizer) Say(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return
	}
	if r.text.Len() > 0 {
		r.text.WriteByte(' ')
	}
	r.text.WriteString(s)
	r.emitLocked()
}

func (r *TypedRecognizer) Backspace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil || r.text.Len() == 0 {
		return
	}
	rs := []rune(r.text.String())
	r.text.Reset()
	r.text.WriteString(string(rs[:len(rs)-1]))
	r.emitLocked()
}

// End finishes the session, as a recognizer does when the speaker stops.
func (r *TypedRecognizer) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endLocked()
}

func (r *TypedRecognizer) endLocked() {
	if r.ch == nil {
		return
	}
	close(r.ch)
	r.ch = nil
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *TypedRecognizer) emitLocked() {
	select {
	case r.ch <- r.text.String():
	default:
		// consumer is far behind; the next update carries the full text
	}
}
