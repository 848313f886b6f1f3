// Package config loads aura's settings from config.yaml and AURA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "AURA"

var ErrNoConfigFile = errors.New("no config file to watch")

type Config struct {
	Render      RenderConfig      `mapstructure:"render"`
	Audio       AudioConfig       `mapstructure:"audio"`
	Haptics     HapticsConfig     `mapstructure:"haptics"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	Interaction InteractionConfig `mapstructure:"interaction"`
}

type RenderConfig struct {
	// Variant is auto, soft, particles, orb or fallback. auto picks by
	// surface width.
	Variant       string `mapstructure:"variant" validate:"oneof=auto soft particles orb fallback"`
	Mood          string `mapstructure:"mood" validate:"oneof=calm urgent opportunity"`
	FPS           int    `mapstructure:"fps" validate:"gte=1,lte=240"`
	ParticleCount int    `mapstructure:"particle_count" validate:"gte=0,lte=1000"`
	Seed          uint64 `mapstructure:"seed"`
}

type AudioConfig struct {
	Device         string  `mapstructure:"device" validate:"max=256"`
	VoiceThreshold float64 `mapstructure:"voice_threshold" validate:"gt=0,lte=1"`
	// Gain boosts quiet microphones before analysis.
	Gain float64 `mapstructure:"gain" validate:"gte=1,lte=16"`
}

type HapticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sounds  bool   `mapstructure:"sounds"` // click chime on mic toggle
	Click   string `mapstructure:"click" validate:"oneof=soft scifi"`
}

type SpeechConfig struct {
	// Enabled false leaves the recognizer out, as on a host without one.
	Enabled bool `mapstructure:"enabled"`
}

type InteractionConfig struct {
	ProcessingDelay time.Duration `mapstructure:"processing_delay" validate:"gte=0,lte=1m"`
	// PushToTalk enables the global hold-to-talk hotkey.
	PushToTalk bool `mapstructure:"push_to_talk"`
	// Hotkey is the push-to-talk combination, e.g. ctrl+shift+space.
	Hotkey string `mapstructure:"hotkey" validate:"required,max=64"`
}

func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Variant:       "auto",
			Mood:          "calm",
			FPS:           30,
			ParticleCount: 30,
		},
		Audio: AudioConfig{
			VoiceThreshold: 0.08,
			Gain:           1,
		},
		Haptics: HapticsConfig{
			Enabled: true,
			Sounds:  true,
			Click:   "soft",
		},
		Speech: SpeechConfig{
			Enabled: true,
		},
		Interaction: InteractionConfig{
			ProcessingDelay: 2000 * time.Millisecond,
			PushToTalk:      true,
			Hotkey:          "ctrl+shift+space",
		},
	}
}

// Dir is where config.yaml is looked up first.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "aura"), nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its range.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldPath(e)+" "+formatValidationMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath turns Config.Render.FPS into render.fps.
func fieldPath(e validator.FieldError) string {
	ns := strings.SplitN(e.StructNamespace(), ".", 2)
	if len(ns) < 2 {
		return e.Field()
	}
	parts := strings.Split(ns[1], ".")
	for i, p := range parts {
		parts[i] = keyFor(p)
	}
	return strings.Join(parts, ".")
}

func keyFor(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(field[i-1] >= 'A' && field[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// Store holds the loaded configuration and the viper instance behind it.
type Store struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg Config
}

// Load reads path, or config.yaml from Dir() and the working directory
// when path is empty. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Store, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Store{v: v}
	cfg, err := s.decode()
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return s, nil
}

func (s *Store) decode() (Config, error) {
	cfg := DefaultConfig()
	if err := s.v.Unmarshal(cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// File is the config file in use, or "" when running on defaults.
func (s *Store) File() string { return s.v.ConfigFileUsed() }

// Watch calls fn with the new configuration whenever the file changes.
// An invalid edit is reported through err and the previous values stay
// in effect.
func (s *Store) Watch(fn func(cfg Config, err error)) error {
	if s.File() == "" {
		return ErrNoConfigFile
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := s.decode()
		if err != nil {
			fn(s.Config(), err)
			return
		}
		s.mu.Lock()
		s.cfg = cfg
		s.mu.Unlock()
		fn(cfg, nil)
	})
	s.v.WatchConfig()
	return nil
}

// Save writes cfg as YAML to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	v := viper.New()
	setDefaults(v, cfg)
	v.SetConfigType("yaml")
	return v.WriteConfigAs(path)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("render.variant", cfg.Render.Variant)
	v.SetDefault("render.mood", cfg.Render.Mood)
	v.SetDefault("render.fps", cfg.Render.FPS)
	v.SetDefault("render.particle_count", cfg.Render.ParticleCount)
	v.SetDefault("render.seed", cfg.Render.Seed)
	v.SetDefault("audio.device", cfg.Audio.Device)
	v.SetDefault("audio.voice_threshold", cfg.Audio.VoiceThreshold)
	v.SetDefault("audio.gain", cfg.Audio.Gain)
	v.SetDefault("haptics.enabled", cfg.Haptics.Enabled)
	v.SetDefault("haptics.sounds", cfg.Haptics.Sounds)
	v.SetDefault("haptics.click", cfg.Haptics.Click)
	v.SetDefault("speech.enabled", cfg.Speech.Enabled)
	v.SetDefault("interaction.processing_delay", cfg.Interaction.ProcessingDelay.String())
	v.SetDefault("interaction.push_to_talk", cfg.Interaction.PushToTalk)
	v.SetDefault("interaction.hotkey", cfg.Interaction.Hotkey)
}
