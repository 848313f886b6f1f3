package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 2000*time.Millisecond, cfg.Interaction.ProcessingDelay)
	assert.Equal(t, "auto", cfg.Render.Variant)
	assert.True(t, cfg.Haptics.Enabled)
	assert.Equal(t, 1.0, cfg.Audio.Gain)
}

func TestValidateReportsKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Variant = "neon"
	cfg.Render.FPS = 0
	cfg.Audio.VoiceThreshold = 1.5
	cfg.Audio.Gain = 0
	cfg.Interaction.Hotkey = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.variant must be one of")
	assert.Contains(t, err.Error(), "render.fps must be at least 1")
	assert.Contains(t, err.Error(), "audio.voice_threshold must be at most 1")
	assert.Contains(t, err.Error(), "audio.gain must be at least 1")
	assert.Contains(t, err.Error(), "interaction.hotkey is required")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
render:
  variant: orb
  mood: urgent
audio:
  voice_threshold: 0.2
interaction:
  processing_delay: 500ms
`)
	s, err := Load(path)
	require.NoError(t, err)
	cfg := s.Config()
	assert.Equal(t, "orb", cfg.Render.Variant)
	assert.Equal(t, "urgent", cfg.Render.Mood)
	assert.InDelta(t, 0.2, cfg.Audio.VoiceThreshold, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.Interaction.ProcessingDelay)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Render.ParticleCount)
	assert.Equal(t, path, s.File())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "haptics:\n  click: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "haptics.click")
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "render:\n  variant: orb\n")
	t.Setenv("AURA_RENDER_VARIANT", "particles")
	t.Setenv("AURA_HAPTICS_ENABLED", "false")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "particles", s.Config().Render.Variant)
	assert.False(t, s.Config().Haptics.Enabled)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Audio.Device = "USB Mic"
	cfg.Render.Mood = "opportunity"
	cfg.Interaction.Hotkey = "ctrl+k"
	require.NoError(t, Save(path, cfg))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USB Mic", s.Config().Audio.Device)
	assert.Equal(t, "opportunity", s.Config().Render.Mood)
	assert.Equal(t, "ctrl+k", s.Config().Interaction.Hotkey)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Mood = "sad"
	require.Error(t, Save(filepath.Join(t.TempDir(), "config.yaml"), cfg))
}

func TestWatchWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", s.File())
	assert.ErrorIs(t, s.Watch(func(Config, error) {}), ErrNoConfigFile)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "render:\n  variant: orb\n")
	s, err := Load(path)
	require.NoError(t, err)

	got := make(chan Config, 8)
	require.NoError(t, s.Watch(func(cfg Config, err error) {
		if err == nil {
			got <- cfg
		}
	}))

	writeFile(t, path, "render:\n  variant: fallback\n")
	require.Eventually(t, func() bool {
		select {
		case cfg := <-got:
			return cfg.Render.Variant == "fallback"
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "fallback", s.Config().Render.Variant)
}
