package audio

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"sync"
	"time"
)

// fakeChunk is how many samples a FakeCapture delivers per callback.
const fakeChunk = 1024

// FakeContext serves one PCM clip, paced at the capture sample rate.
// Silence follows once the clip has played.
type FakeContext struct {
	pcm []byte
}

// NewFakeContext serves the samples of a 16 kHz mono 16-bit WAV file.
func NewFakeContext(wavPath string) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return &FakeContext{pcm: data}, nil
}

// NewToneContext serves a sine tone of the given peak amplitude (0..1)
// and length.
func NewToneContext(freq, amplitude float64, length time.Duration) *FakeContext {
	n := int(length.Seconds() * SampleRate)
	pcm := make([]byte, n*BytesPerSample)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * amplitude)
		binary.LittleEndian.PutUint16(pcm[i*BytesPerSample:], uint16(s))
	}
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm}, nil
}

// FakeCapture replays its clip from the start on every Start.
type FakeCapture struct {
	pcm []byte

	mu   sync.Mutex
	cb   DataCallback
	stop chan struct{}
	done chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() { f.SetCallback(nil) }

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != nil {
		return nil
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	go f.feed(f.stop, f.done)
	return nil
}

func (f *FakeCapture) feed(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	chunkBytes := fakeChunk * BytesPerSample
	silence := make([]byte, chunkBytes)
	ticker := time.NewTicker(time.Duration(fakeChunk) * time.Second / SampleRate)
	defer ticker.Stop()

	pos := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		cb := f.callback()
		if cb == nil {
			continue
		}
		chunk := silence
		if pos < len(f.pcm) {
			end := min(pos+chunkBytes, len(f.pcm))
			chunk = append([]byte(nil), f.pcm[pos:end]...)
			pos = end
		}
		cb(chunk, uint32(len(chunk)/BytesPerSample))
	}
}

// Stop waits for the feeder to exit; no callback runs after it returns.
func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop, done := f.stop, f.done
	f.stop, f.done = nil, nil
	f.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (f *FakeCapture) Close() { f.Stop() }

// FakeMicrophone hands out streams backed by a FakeContext.
type FakeMicrophone struct {
	ctx *FakeContext

	mu       sync.Mutex
	denied   bool
	gate     chan struct{}
	acquired []*Stream
}

func NewFakeMicrophone(ctx *FakeContext) *FakeMicrophone {
	return &FakeMicrophone{ctx: ctx}
}

// SetDenied makes later Acquire calls fail with ErrPermissionDenied.
func (f *FakeMicrophone) SetDenied(denied bool) {
	f.mu.Lock()
	f.denied = denied
	f.mu.Unlock()
}

// Hold makes Acquire block until the returned release func is called.
func (f *FakeMicrophone) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *FakeMicrophone) Acquire(ctx context.Context) (*Stream, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	denied := f.denied
	f.mu.Unlock()
	if denied {
		return nil, ErrPermissionDenied
	}

	dev, err := f.ctx.NewCapture(nil, DefaultCaptureConfig())
	if err != nil {
		return nil, err
	}
	if err := dev.Start(); err != nil {
		return nil, err
	}
	s := NewStream(dev)
	f.mu.Lock()
	f.acquired = append(f.acquired, s)
	f.mu.Unlock()
	return s, nil
}

// Streams returns every stream handed out so far.
func (f *FakeMicrophone) Streams() []*Stream {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Stream, len(f.acquired))
	copy(out, f.acquired)
	return out
}
