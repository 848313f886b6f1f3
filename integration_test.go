//go:build integration

package main_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("AURA_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "AURA_TEST_BIN not set; build with: go build -o /tmp/aura . && AURA_TEST_BIN=/tmp/aura go test -tags integration")
		os.Exit(1)
	}
	abs, err := filepath.Abs(testBinary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolving AURA_TEST_BIN: %v\n", err)
		os.Exit(1)
	}
	testBinary = abs
	os.Exit(m.Run())
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

type result struct {
	out    string
	logDir string
}

// runAura runs the binary in test mode inside a scratch directory with
// a short processing delay. env entries are added to the environment.
func runAura(t *testing.T, stdin string, env []string, args ...string) result {
	t.Helper()
	work := t.TempDir()
	logDir := filepath.Join(work, "logs")
	cmdArgs := append([]string{"-logpath", logDir, "-test"}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Dir = work
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(work, "config"),
		"AURA_INTERACTION_PROCESSING_DELAY=200ms",
	)
	cmd.Env = append(cmd.Env, env...)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "aura exited with error\noutput: %s", out)
	return result{out: string(out), logDir: logDir}
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func TestListenProcessIdle(t *testing.T) {
	r := runAura(t, cmds(
		"MIC", "WAIT_STATE listening",
		"SAY hello world", "END",
		"WAIT_STATE processing", "WAIT_IDLE", "QUIT",
	), nil)

	assert.Contains(t, r.out, "state idle -> listening")
	assert.Contains(t, r.out, "state listening -> processing")
	assert.Contains(t, r.out, "state processing -> idle")
	assert.Contains(t, r.out, "transcript hello world")
	assert.Contains(t, r.out, "haptic listening")
	assert.Contains(t, r.out, "haptic thinking")

	assert.Contains(t, readLog(t, r.logDir, "transcript_log.txt"), "hello world")
	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	assert.Contains(t, diag, "session_start")
	assert.Contains(t, diag, "capture")
	assert.Contains(t, diag, "session_end")
}

func TestToggleOffWithoutSpeech(t *testing.T) {
	r := runAura(t, cmds("MIC", "WAIT_STATE listening", "SLEEP 200", "MIC", "WAIT_IDLE", "QUIT"), nil)

	assert.Contains(t, r.out, "state listening -> idle")
	assert.Contains(t, r.out, "haptic success")
	assert.NotContains(t, r.out, "transcript ")
	assert.Empty(t, strings.TrimSpace(readLog(t, r.logDir, "transcript_log.txt")))
}

func TestTwoRounds(t *testing.T) {
	r := runAura(t, cmds(
		"MIC", "WAIT_STATE listening", "SAY first", "END", "WAIT_STATE processing", "WAIT_IDLE",
		"MIC", "WAIT_STATE listening", "SAY second", "END", "WAIT_STATE processing", "WAIT_IDLE",
		"QUIT",
	), nil)

	assert.Contains(t, r.out, "transcript first")
	assert.Contains(t, r.out, "transcript second")
	assert.Equal(t, 2, strings.Count(r.out, "state processing -> idle"))
}

func TestSpeechDisabledReportsCapability(t *testing.T) {
	r := runAura(t, cmds("MIC", "SLEEP 300", "QUIT"), []string{"AURA_SPEECH_ENABLED=false"})

	assert.Contains(t, r.out, "capability_error")
	assert.NotContains(t, r.out, "state idle -> listening")
}

func TestDeniedMicStillTranscribes(t *testing.T) {
	r := runAura(t, cmds(
		"DENY", "MIC", "WAIT_STATE listening",
		"SAY typed anyway", "END", "WAIT_IDLE", "QUIT",
	), nil)

	assert.Contains(t, r.out, "transcript typed anyway")
	assert.Contains(t, readLog(t, r.logDir, "diagnostics_log.txt"), "denied")
}

func TestClickHaptic(t *testing.T) {
	r := runAura(t, cmds("CLICK", "SLEEP 100", "QUIT"), nil)
	assert.Contains(t, r.out, "haptic click")
}

func TestHapticsDisabled(t *testing.T) {
	r := runAura(t, cmds("CLICK", "MIC", "WAIT_STATE listening", "MIC", "WAIT_IDLE", "QUIT"),
		[]string{"AURA_HAPTICS_ENABLED=false"})
	assert.NotContains(t, r.out, "haptic ")
}

func TestSilenceWarnsNoVoice(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the no-voice warning")
	}
	wav := filepath.Join(t.TempDir(), "silence.wav")
	require.NoError(t, generateSilenceWAV(wav, 16000, 12.0))

	r := runAura(t, cmds("MIC", "WAIT_STATE listening", "SLEEP 9000", "MIC", "WAIT_IDLE", "QUIT"), nil, wav)

	assert.Contains(t, r.out, "no_voice on")
	assert.Contains(t, r.out, "haptic error")
	assert.Contains(t, r.out, "no_voice off")
}

func TestInvalidConfigFails(t *testing.T) {
	cmd := exec.Command(testBinary, "-test", "-logpath", t.TempDir())
	cmd.Dir = t.TempDir()
	cmd.Stdin = strings.NewReader("QUIT\n")
	cmd.Env = append(os.Environ(), "AURA_RENDER_FPS=0")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(out), "render.fps")
}
