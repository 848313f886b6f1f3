//go:build !linux

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// output is a single playback device fed from a byte cursor. A new
// sound replaces whatever is still playing.
type output struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	pending atomic.Pointer[[]byte]
	pos     atomic.Uint32
}

var out output

func openOutput() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	out.ctx = ctx
	if err := out.open(); err != nil {
		ctx.Uninit()
		out.ctx = nil
	}
}

func (o *output) open() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	dev, err := malgo.InitDevice(o.ctx.Context, cfg, malgo.DeviceCallbacks{Data: o.fill})
	if err != nil {
		return err
	}
	o.device = dev
	return nil
}

func (o *output) fill(dst, _ []byte, frames uint32) {
	src := o.pending.Load()
	if src == nil {
		clear(dst)
		return
	}
	pos := o.pos.Load()
	n := min(frames*2, uint32(len(*src))-pos)
	copy(dst[:n], (*src)[pos:pos+n])
	clear(dst[n:])
	if pos+n >= uint32(len(*src)) {
		o.pending.Store(nil)
		return
	}
	o.pos.Store(pos + n)
}

func play(samples []int16) {
	if out.ctx == nil || len(samples) == 0 {
		return
	}
	buf := toBytes(samples)

	out.mu.Lock()
	defer out.mu.Unlock()
	if out.device == nil {
		return
	}

	out.device.Stop()
	out.pos.Store(0)
	out.pending.Store(&buf)
	if err := out.device.Start(); err == nil {
		return
	}
	// Devices go stale across sleep/wake; reopen once.
	out.device.Uninit()
	out.device = nil
	if err := out.open(); err != nil || out.device.Start() != nil {
		out.pending.Store(nil)
	}
}
