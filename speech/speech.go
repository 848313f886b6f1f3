// Package speech wraps a speech-to-text capability behind an explicit
// attach step and publishes the listening flag and live transcript.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrUnsupported = errors.New("speech recognition not supported")
	ErrNotAttached = errors.New("speech controller not attached")
)

// Recognizer is the platform speech capability. Each value on the channel
// returned by Start is the whole transcript so far; the channel closes
// when recognition ends.
type Recognizer interface {
	Supported() bool
	Start(ctx context.Context, continuous bool) (<-chan string, error)
	Stop() error
}

type State struct {
	Transcript string
	Listening  bool
	Supported  bool
	// Mounted is true between Attach and Detach. Supported and Listening
	// are always false while it is false.
	Mounted bool
}

type Controller struct {
	rec Recognizer
	log zerolog.Logger

	mu         sync.Mutex
	attached   bool
	supported  bool
	listening  bool
	starting   bool
	transcript string
	session    uint64
	cancel     context.CancelFunc
	subs       []*subscriber
}

func New(rec Recognizer, logger zerolog.Logger) *Controller {
	return &Controller{rec: rec, log: logger.With().Str("component", "speech").Logger()}
}

// Attach probes the recognizer. Until it is called the controller
// reports nothing and refuses to start.
func (c *Controller) Attach() {
	supported := c.probe()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = true
	c.supported = supported
	c.publishLocked()
}

func (c *Controller) probe() (ok bool) {
	if c.rec == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn().Interface("panic", r).Msg("support probe panicked")
			ok = false
		}
	}()
	return c.rec.Supported()
}

// Detach ends any running session and returns to the unattached phase.
func (c *Controller) Detach() {
	c.mu.Lock()
	if !c.attached {
		c.mu.Unlock()
		return
	}
	wasListening := c.listening
	cancel := c.cancel
	c.session++
	c.attached = false
	c.supported = false
	c.listening = false
	c.cancel = nil
	c.publishLocked()
	c.mu.Unlock()

	if wasListening {
		if err := c.callStop(); err != nil {
			c.log.Debug().Err(err).Msg("stop on detach")
		}
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	if !c.attached {
		return State{Transcript: c.transcript}
	}
	return State{
		Transcript: c.transcript,
		Listening:  c.listening,
		Supported:  c.supported,
		Mounted:    true,
	}
}

// Start begins continuous recognition. It does not clear the transcript.
func (c *Controller) Start() error {
	c.mu.Lock()
	switch {
	case !c.attached:
		c.mu.Unlock()
		return ErrNotAttached
	case !c.supported:
		c.mu.Unlock()
		return ErrUnsupported
	case c.listening || c.starting:
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.session++
	sess := c.session
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := c.callStart(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil || c.session != sess {
		c.mu.Unlock()
		cancel()
		if err == nil {
			return ErrNotAttached
		}
		return fmt.Errorf("speech start: %w", err)
	}
	c.listening = true
	c.cancel = cancel
	c.publishLocked()
	c.mu.Unlock()

	go c.pump(sess, updates, cancel)
	return nil
}

func (c *Controller) callStart(ctx context.Context) (ch <-chan string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recognizer panicked: %v", r)
		}
	}()
	ch, err = c.rec.Start(ctx, true)
	if err == nil && ch == nil {
		err = errors.New("recognizer returned no update channel")
	}
	return ch, err
}

func (c *Controller) pump(sess uint64, updates <-chan string, cancel context.CancelFunc) {
	defer cancel()
	for text := range updates {
		c.mu.Lock()
		if c.session == sess && c.transcript != text {
			c.transcript = text
			c.publishLocked()
		}
		c.mu.Unlock()
	}
	c.mu.Lock()
	if c.session == sess && c.listening {
		c.listening = false
		c.cancel = nil
		c.publishLocked()
	}
	c.mu.Unlock()
}

// Stop asks the recognizer to finish. Listening turns false once the
// recognizer has delivered its last update.
func (c *Controller) Stop() error {
	c.mu.Lock()
	listening := c.listening
	c.mu.Unlock()
	if !listening {
		return nil
	}
	if err := c.callStop(); err != nil {
		return fmt.Errorf("speech stop: %w", err)
	}
	return nil
}

func (c *Controller) callStop() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recognizer panicked: %v", r)
		}
	}()
	return c.rec.Stop()
}

func (c *Controller) ResetTranscript() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transcript == "" {
		return
	}
	c.transcript = ""
	c.publishLocked()
}

// Subscribe delivers every state change, in order, until ctx is done.
// The current state is sent first.
func (c *Controller) Subscribe(ctx context.Context) <-chan State {
	s := newSubscriber()
	c.mu.Lock()
	c.subs = append(c.subs, s)
	s.push(c.stateLocked())
	c.mu.Unlock()

	go func() {
		s.run(ctx)
		c.mu.Lock()
		for i, x := range c.subs {
			if x == s {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
	}()
	return s.out
}

func (c *Controller) publishLocked() {
	st := c.stateLocked()
	for _, s := range c.subs {
		s.push(st)
	}
}

// subscriber is an unbounded mailbox so publishing never blocks the
// recognizer pump.
type subscriber struct {
	mu    sync.Mutex
	queue []State
	wake  chan struct{}
	out   chan State
}

func newSubscriber() *subscriber {
	return &subscriber{wake: make(chan struct{}, 1), out: make(chan State)}
}

func (s *subscriber) push(st State) {
	s.mu.Lock()
	s.queue = append(s.queue, st)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run(ctx context.Context) {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-ctx.Done():
				return
			}
		}
		st := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- st:
		case <-ctx.Done():
			return
		}
	}
}
