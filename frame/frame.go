// Package frame schedules per-frame callbacks, one frame at a time.
package frame

import (
	"sync"
	"time"
)

type ID uint64

// Callback receives the frame timestamp.
type Callback func(now time.Time)

// Scheduler runs a callback once on the next frame. Cancel on an already
// fired or unknown ID is a no-op.
type Scheduler interface {
	Request(cb Callback) ID
	Cancel(id ID)
}

// Ticker fires pending callbacks from a ticker goroutine.
type Ticker struct {
	mu      sync.Mutex
	next    ID
	pending map[ID]Callback
	order   []ID

	stopCh chan struct{}
	done   chan struct{}
}

func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	t := &Ticker{
		pending: make(map[ID]Callback),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go t.run(time.Second / time.Duration(fps))
	return t
}

func (t *Ticker) run(interval time.Duration) {
	defer close(t.done)
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-t.stopCh:
			return
		case now := <-tk.C:
			for _, cb := range t.take() {
				cb(now)
			}
		}
	}
}

func (t *Ticker) take() []Callback {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.order) == 0 {
		return nil
	}
	cbs := make([]Callback, 0, len(t.order))
	for _, id := range t.order {
		if cb, ok := t.pending[id]; ok {
			cbs = append(cbs, cb)
			delete(t.pending, id)
		}
	}
	t.order = t.order[:0]
	return cbs
}

func (t *Ticker) Request(cb Callback) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.pending[t.next] = cb
	t.order = append(t.order, t.next)
	return t.next
}

func (t *Ticker) Cancel(id ID) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// Stop halts the ticker goroutine. Pending callbacks never fire.
func (t *Ticker) Stop() {
	select {
	case <-t.stopCh:
	default:
		close(t.stopCh)
	}
	<-t.done
}

// Manual fires callbacks only when Step is called.
type Manual struct {
	mu      sync.Mutex
	next    ID
	pending map[ID]Callback
	order   []ID
}

func NewManual() *Manual {
	return &Manual{pending: make(map[ID]Callback)}
}

func (m *Manual) Request(cb Callback) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.pending[m.next] = cb
	m.order = append(m.order, m.next)
	return m.next
}

func (m *Manual) Cancel(id ID) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// Pending reports how many callbacks wait for the next frame.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Step fires every callback requested before the call. Callbacks requested
// from inside a callback wait for the next Step.
func (m *Manual) Step(now time.Time) int {
	m.mu.Lock()
	var cbs []Callback
	for _, id := range m.order {
		if cb, ok := m.pending[id]; ok {
			cbs = append(cbs, cb)
			delete(m.pending, id)
		}
	}
	m.order = m.order[:0]
	m.mu.Unlock()

	for _, cb := range cbs {
		cb(now)
	}
	return len(cbs)
}
