package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"aura/appstate"
	"aura/audio"
	"aura/beep"
	"aura/config"
	"aura/haptic"
	"aura/log"
	"aura/orchestrator"
	"aura/speech"
)

const testWaitTimeout = 10 * time.Second

// lineSink prints orchestrator output one event per line.
type lineSink struct {
	mu      sync.Mutex
	w       io.Writer
	state   appstate.State
	changed chan struct{}
}

func newLineSink(w io.Writer) *lineSink {
	return &lineSink{w: w, changed: make(chan struct{})}
}

func (s *lineSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format+"\n", args...)
}

func (s *lineSink) StateChanged(from, to appstate.State) {
	s.mu.Lock()
	fmt.Fprintf(s.w, "state %s -> %s\n", from, to)
	s.state = to
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

func (s *lineSink) Transcript(text string) { s.printf("transcript %s", text) }

func (s *lineSink) Loudness(float64) {}

func (s *lineSink) CapabilityError(err error) { s.printf("capability_error %v", err) }

func (s *lineSink) NoVoiceWarning(active bool) {
	if active {
		s.printf("no_voice on")
	} else {
		s.printf("no_voice off")
	}
}

// waitState blocks until the last reported state is named name.
func (s *lineSink) waitState(name string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		s.mu.Lock()
		cur, ch := s.state, s.changed
		s.mu.Unlock()
		if cur.String() == name {
			return true
		}
		select {
		case <-ch:
		case <-deadline:
			return false
		}
	}
}

// printVibrator reports patterns instead of playing them.
type printVibrator struct{ out *lineSink }

func (v printVibrator) Vibrate(pattern []time.Duration) error {
	v.out.printf("haptic %s", haptic.FromDurations(pattern))
	return nil
}

// runTestMode drives a session from stdin commands and returns the exit
// code. Capture reads wavPath, or a steady tone when it is empty.
func runTestMode(wavPath string, cfg config.Config) int {
	beep.Disable()
	defer log.Close()

	var fctx *audio.FakeContext
	if wavPath != "" {
		var err error
		fctx, err = audio.NewFakeContext(wavPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
			return 1
		}
	} else {
		fctx = audio.NewToneContext(440, 0.6, time.Minute)
	}
	mic := audio.NewFakeMicrophone(fctx)

	var rec speech.Recognizer
	typed := speech.NewTypedRecognizer()
	if cfg.Speech.Enabled {
		rec = typed
	}

	out := newLineSink(os.Stdout)
	s := newSession(sessionOptions{
		cfg:          cfg,
		mic:          mic,
		rec:          rec,
		vib:          printVibrator{out: out},
		width:        240,
		height:       240,
		logicalWidth: 240,
		scale:        1,
		sinks:        []orchestrator.Sink{logSink{}, out},
	})
	s.orch.Start()
	defer func() {
		s.Close()
		log.SessionEnd(int(transcriptCount.Load()))
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "":
		case "MIC":
			s.orch.ToggleMic()
		case "CLICK":
			s.orch.Click()
		case "SAY":
			typed.Append(arg)
		case "END":
			typed.End()
		case "DENY":
			mic.SetDenied(arg != "off")
		case "WAIT_STATE", "WAIT_IDLE":
			name := strings.ToLower(arg)
			if cmd == "WAIT_IDLE" {
				name = appstate.Idle.String()
			}
			if !out.waitState(name, testWaitTimeout) {
				out.printf("timeout waiting for %s", name)
				return 1
			}
		case "SLEEP":
			if ms, err := strconv.Atoi(arg); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "QUIT":
			return 0
		default:
			out.printf("unknown command %q", cmd)
		}
	}
	return 0
}
