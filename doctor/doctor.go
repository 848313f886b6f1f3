package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"aura/analyzer"
	"aura/audio"
	"aura/beep"
	"aura/clipboard"
	"aura/frame"
	"aura/haptic"
	"aura/hotkey"

	"github.com/rs/zerolog"
)

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(deviceName string, combo hotkey.Combo) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("aura doctor - interactive system diagnostics")
	fmt.Println("=============================================")

	allPass := true

	if !checkHotkey(combo) {
		allPass = false
	}
	if !checkMicLoudness(deviceName) {
		allPass = false
	}
	if !checkHaptics() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey(combo hotkey.Combo) bool {
	fmt.Println()
	fmt.Println("[1/4] Hotkey detection")
	fmt.Printf("Press %s...\n", combo)

	hk := hotkey.New(combo)
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// Wait for keyup to avoid triggering next step
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// Reset terminal after hotkey - it may leave terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func pickDevice(devices []audio.DeviceInfo, name string) *audio.DeviceInfo {
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	return nil
}

// minLoudness is the peak a spoken phrase must reach to pass.
const minLoudness = 0.05

func checkMicLoudness(deviceName string) bool {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture and loudness")

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	var device *audio.DeviceInfo
	if deviceName != "" {
		devices, err := actx.Devices()
		if err != nil {
			fmt.Printf("  FAIL: cannot list devices: %v\n", err)
			return false
		}
		if device = pickDevice(devices, deviceName); device == nil {
			fmt.Printf("  FAIL: device %q not found\n", deviceName)
			return false
		}
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	mic := audio.NewDeviceMicrophone(actx, device)
	stream, err := mic.Acquire(context.Background())
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	sched := frame.NewTicker(30)
	defer sched.Stop()
	engine := analyzer.NewEngine(sched, zerolog.Nop())

	var mu sync.Mutex
	var peak, sum float64
	var n int
	err = engine.Start(stream, func(v float64) {
		mu.Lock()
		defer mu.Unlock()
		sum += v
		n++
		if v > peak {
			peak = v
		}
	})
	if err != nil {
		stream.Stop()
		fmt.Printf("  FAIL: capture: %v\n", err)
		return false
	}

	fmt.Printf("  Listening on %s", stream.DeviceName())
	for i := 0; i < 6; i++ {
		time.Sleep(500 * time.Millisecond)
		fmt.Print(".")
	}
	engine.Stop()
	fmt.Println(" done")

	mu.Lock()
	defer mu.Unlock()
	if n == 0 {
		fmt.Println("  FAIL: no loudness samples")
		return false
	}
	fmt.Printf("  %d samples, mean %.3f, peak %.3f\n", n, sum/float64(n), peak)
	if peak < minLoudness {
		fmt.Printf("  FAIL: peak below %.2f (microphone muted?)\n", minLoudness)
		return false
	}
	fmt.Println("  PASS: voice loudness detected")
	return true
}

func checkHaptics() bool {
	fmt.Println()
	fmt.Println("[3/4] Haptic patterns")

	beep.Init()
	d := haptic.New(haptic.BeepVibrator{}, zerolog.Nop())
	d.Init()
	defer d.Close()

	for _, p := range []haptic.Pattern{haptic.Click, haptic.Listening, haptic.Thinking, haptic.Success, haptic.Error} {
		fmt.Printf("  %s %v\n", p, []int(p))
		d.Trigger(p)
		time.Sleep(600 * time.Millisecond)
	}

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Did you hear five distinct pulse patterns? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm != "y" && confirm != "yes" {
		fmt.Println("  FAIL: haptic playback not confirmed")
		return false
	}
	fmt.Println("  PASS: haptic playback verified by user")
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/4] Clipboard copy")

	if !clipboard.Available() {
		fmt.Printf("  FAIL: %v\n", clipboard.ErrUnavailable)
		return false
	}

	testStr := fmt.Sprintf("aura-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Println("  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Println("  FAIL: clipboard timed out (clipboard tool hung - compositor not accessible?)")
		return false
	}
}
