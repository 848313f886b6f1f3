package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrUnavailable      = errors.New("microphone unavailable")
)

// Stream is one live microphone track. It owns the capture device it
// wraps; Stop releases the device and is safe to call more than once.
type Stream struct {
	dev CaptureDevice

	mu   sync.Mutex
	live bool
}

// NewStream wraps an already started capture device.
func NewStream(dev CaptureDevice) *Stream {
	return &Stream{dev: dev, live: true}
}

// Listen routes captured PCM to cb, replacing any previous listener.
func (s *Stream) Listen(cb DataCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.dev.SetCallback(cb)
	}
}

func (s *Stream) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func (s *Stream) DeviceName() string {
	return s.dev.DeviceName()
}

func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	s.live = false
	s.dev.ClearCallback()
	s.dev.Stop()
	s.dev.Close()
}

// Microphone acquires a live stream, the way a permission prompt would.
type Microphone interface {
	Acquire(ctx context.Context) (*Stream, error)
}

// DeviceMicrophone opens a new capture device on every Acquire.
type DeviceMicrophone struct {
	ctx    Context
	config CaptureConfig

	mu     sync.Mutex
	device *DeviceInfo
}

func NewDeviceMicrophone(ctx Context, device *DeviceInfo) *DeviceMicrophone {
	return &DeviceMicrophone{ctx: ctx, config: DefaultCaptureConfig(), device: device}
}

// SetDevice changes the device used by the next Acquire. nil selects the
// system default.
func (m *DeviceMicrophone) SetDevice(device *DeviceInfo) {
	m.mu.Lock()
	m.device = device
	m.mu.Unlock()
}

// SetGain sets the sample gain for streams acquired afterwards.
func (m *DeviceMicrophone) SetGain(gain float64) {
	m.mu.Lock()
	m.config.Gain = gain
	m.mu.Unlock()
}

func (m *DeviceMicrophone) Device() *DeviceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device
}

func (m *DeviceMicrophone) Acquire(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	device, config := m.device, m.config
	m.mu.Unlock()
	dev, err := m.ctx.NewCapture(device, config)
	if err != nil {
		return nil, classify(err)
	}
	if err := dev.Start(); err != nil {
		dev.Close()
		return nil, classify(err)
	}
	if err := ctx.Err(); err != nil {
		dev.Stop()
		dev.Close()
		return nil, err
	}
	return NewStream(dev), nil
}

func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"permission", "denied", "not authorized", "access"} {
		if strings.Contains(msg, kw) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
