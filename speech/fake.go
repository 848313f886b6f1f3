package speech

import (
	"context"
	"sync"
)

// FakeRecognizer is a TypedRecognizer with failure injection.
type FakeRecognizer struct {
	*TypedRecognizer

	mu          sync.Mutex
	unsupported bool
	startErr    error
	stopErr     error
	panicStart  bool
	starts      int
	stops       int
}

func NewFakeRecognizer() *FakeRecognizer {
	return &FakeRecognizer{TypedRecognizer: NewTypedRecognizer()}
}

func (f *FakeRecognizer) SetSupported(ok bool) {
	f.mu.Lock()
	f.unsupported = !ok
	f.mu.Unlock()
}

func (f *FakeRecognizer) FailStart(err error) {
	f.mu.Lock()
	f.startErr = err
	f.mu.Unlock()
}

func (f *FakeRecognizer) FailStop(err error) {
	f.mu.Lock()
	f.stopErr = err
	f.mu.Unlock()
}

func (f *FakeRecognizer) PanicOnStart(on bool) {
	f.mu.Lock()
	f.panicStart = on
	f.mu.Unlock()
}

func (f *FakeRecognizer) Supported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unsupported
}

func (f *FakeRecognizer) Start(ctx context.Context, continuous bool) (<-chan string, error) {
	f.mu.Lock()
	f.starts++
	err, p := f.startErr, f.panicStart
	f.mu.Unlock()
	if p {
		panic("recognizer start")
	}
	if err != nil {
		return nil, err
	}
	return f.TypedRecognizer.Start(ctx, continuous)
}

func (f *FakeRecognizer) Stop() error {
	f.mu.Lock()
	f.stops++
	err := f.stopErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.TypedRecognizer.Stop()
}

func (f *FakeRecognizer) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeRecognizer) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
