// Package log writes aura's diagnostics and transcript logs. Every call is
// a no-op until Init succeeds, so packages can log before the directory
// is known.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	diagName       = "diagnostics_log.txt"
	transcriptName = "transcript_log.txt"
	stampLayout    = "2006-01-02 15:04:05"
)

var (
	mu          sync.Mutex
	ready       atomic.Bool
	dir         string
	pid         int
	diag        zerolog.Logger
	diagOut     *os.File
	transcripts *os.File
)

// CaptureStats summarises one listening session's audio capture.
type CaptureStats struct {
	Device       string
	DurationS    float64
	Frames       int
	PeakLoudness float64
}

// ResolveDir picks the log directory: the -logpath flag, then
// AURA_LOG_PATH, then the per-OS default. Relative paths resolve against
// the working directory.
func ResolveDir(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv("AURA_LOG_PATH")} {
		if p != "" {
			return absPath(p)
		}
	}
	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) { dir = d }

func Dir() string { return dir }

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func openAppend(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Init opens both log files in the current directory.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}
	d, err := openAppend(diagName)
	if err != nil {
		return err
	}
	t, err := openAppend(transcriptName)
	if err != nil {
		d.Close()
		return err
	}

	pid = os.Getpid()
	diagOut, transcripts = d, t
	diag = zerolog.New(zerolog.ConsoleWriter{
		Out:        d,
		TimeFormat: stampLayout,
		NoColor:    true,
	}).With().Timestamp().Int("pid", pid).Logger()
	ready.Store(true)
	return nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	ready.Store(false)
	for _, f := range []**os.File{&diagOut, &transcripts} {
		if *f != nil {
			(*f).Close()
			*f = nil
		}
	}
}

// event returns nil before Init; zerolog treats a nil event as disabled.
func event(level zerolog.Level) *zerolog.Event {
	if !ready.Load() {
		return nil
	}
	return diag.WithLevel(level)
}

// Logger returns the diagnostics logger for components that take a
// zerolog.Logger. It is a no-op logger until Init succeeds.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !ready.Load() {
		return zerolog.Nop()
	}
	return diag
}

func Info(msg string) { event(zerolog.InfoLevel).Msg(msg) }

func Warn(msg string) { event(zerolog.WarnLevel).Msg(msg) }

func Warnf(format string, args ...any) { event(zerolog.WarnLevel).Msgf(format, args...) }

func Errorf(format string, args ...any) { event(zerolog.ErrorLevel).Msgf(format, args...) }

func Transition(from, to string) {
	event(zerolog.InfoLevel).Str("from", from).Str("to", to).Msg("state")
}

func CaptureMetrics(m CaptureStats) {
	event(zerolog.InfoLevel).
		Str("device", m.Device).
		Float64("duration_s", m.DurationS).
		Int("frames", m.Frames).
		Float64("peak", m.PeakLoudness).
		Msg("capture")
}

// TranscriptText appends one tab-separated line: time, [pid], text.
func TranscriptText(text string) {
	if !ready.Load() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if transcripts == nil {
		return
	}
	fmt.Fprintf(transcripts, "%s\t[%d]\t%s\n", time.Now().Format(stampLayout), pid, text)
}

func SessionStart(variant, device string) {
	event(zerolog.InfoLevel).Str("variant", variant).Str("device", device).Msg("session_start")
}

func SessionEnd(count int) {
	event(zerolog.InfoLevel).Int("count", count).Msg("session_end")
}
