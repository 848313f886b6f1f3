package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"sync"
	"time"

	"aura/audio"
	"aura/beep"
	"aura/config"
	"aura/doctor"
	"aura/haptic"
	"aura/hotkey"
	"aura/log"
	"aura/orchestrator"
	"aura/shutdown"
	"aura/speech"

	"golang.org/x/term"
)

var version = "dev"

var guiMode bool

var shutdownOnce sync.Once

func gracefulShutdown(s *session) {
	shutdownOnce.Do(func() {
		if s != nil {
			s.Close()
		}
		if n := transcriptCount.Load(); n > 0 {
			log.SessionEnd(int(n))
		}
		log.Close()
		guiQuit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
			p.Wait()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func findDevice(ctx audio.Context, name string) *audio.DeviceInfo {
	if name == "" {
		return nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		log.Warnf("enumerating devices: %v", err)
		return nil
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	log.Warnf("device %q not found, using system default", name)
	return nil
}

// surfaceSize returns the canvas size for the terminal, its width in
// surface points and the canvas scale.
func surfaceSize() (w, h, logical int, scale float64) {
	if guiMode {
		w, h = guiSize()
		return w, h, w, 1
	}
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= infoLines {
		cols, rows = 80, 24
	}
	w = cols * cellW
	h = (rows - infoLines) * cellH
	return w, h, w / 2, 0.5
}

// flagOverrides are command-line values that win over the config file,
// including after a reload.
type flagOverrides struct {
	device, variant, mood string
}

func (f flagOverrides) apply(cfg *config.Config) {
	if f.device != "" {
		cfg.Audio.Device = f.device
	}
	if f.variant != "" {
		cfg.Render.Variant = f.variant
	}
	if f.mood != "" {
		cfg.Render.Mood = f.mood
	}
}

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device and save it to the config file")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	variantFlag := flag.String("variant", "", "Render variant: auto, soft, particles, orb or fallback")
	moodFlag := flag.String("mood", "", "Colour mood: calm, urgent or opportunity")
	configFlag := flag.String("config", "", "Config file (default: <user config dir>/aura/config.yaml)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for PTT vs tap (e.g., 350ms)")
	flag.Bool("gui", false, "Run in a floating window (requires a build with -tags gui)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *versionFlag {
		fmt.Printf("aura %s\n", version)
		os.Exit(0)
	}

	store, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	overrides := flagOverrides{device: *deviceFlag, variant: *variantFlag, mood: *moodFlag}
	cfg := store.Config()
	overrides.apply(&cfg)
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	combo, err := hotkey.ParseCombo(cfg.Interaction.Hotkey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: interaction.hotkey: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg.Audio.Device, combo))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(cfg.Render.Variant, cfg.Audio.Device)

	if *testFlag {
		wav := ""
		if args := flag.Args(); len(args) > 0 {
			wav = args[0]
		}
		os.Exit(runTestMode(wav, cfg))
	}

	ctx := guiAudioCtx
	if ctx == nil {
		ctx, err = audio.NewContext()
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Printf("Error initializing audio context: %v\n", err)
			os.Exit(1)
		}
	}
	defer ctx.Close()

	if *setupFlag {
		dev, err := audio.SelectDevice(ctx, cfg.Audio.Device)
		switch {
		case errors.Is(err, audio.ErrSelectionCancelled):
		case err != nil:
			fmt.Printf("Warning: device selection failed: %v\n", err)
		case dev != nil:
			cfg.Audio.Device = dev.Name
			if err := saveConfig(store, &cfg); err != nil {
				fmt.Printf("Warning: could not save config: %v\n", err)
			}
		}
	}

	selected := findDevice(ctx, cfg.Audio.Device)
	mic := audio.NewDeviceMicrophone(ctx, selected)
	mic.SetGain(cfg.Audio.Gain)

	go beep.Init()

	isToggle := func() bool { return true }
	var hy *hotkey.Hybrid
	if cfg.Interaction.PushToTalk {
		hk := hotkey.New(combo)
		if err := hk.Register(); err != nil {
			log.Warnf("hotkey register error: %v", err)
		} else {
			defer hk.Unregister()
			hy = hotkey.NewHybrid(hk, *longPressFlag)
			isToggle = hy.IsToggle
		}
	}

	var rec speech.Recognizer
	var typed *speech.TypedRecognizer
	if cfg.Speech.Enabled {
		typed = speech.NewTypedRecognizer()
		rec = typed
	}

	sinks := []orchestrator.Sink{logSink{}}
	present := presentFrame
	if guiMode {
		sinks = append(sinks, guiSink())
		present = guiPresent()
	} else {
		sinks = append(sinks, tuiSink{})
	}

	w, h, logical, scale := surfaceSize()
	s := newSession(sessionOptions{
		cfg:          cfg,
		mic:          mic,
		rec:          rec,
		vib:          haptic.BeepVibrator{},
		width:        w,
		height:       h,
		logicalWidth: logical,
		scale:        scale,
		present:      present,
		isToggle:     isToggle,
		sinks:        sinks,
	})
	s.orch.Start()

	err = store.Watch(func(next config.Config, err error) {
		if err != nil {
			log.Warnf("config reload: %v", err)
			return
		}
		overrides.apply(&next)
		s.applyConfig(next)
	})
	if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
		log.Warnf("config watch: %v", err)
	}

	if guiMode {
		guiBind(s.orch, typed)
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(s.orch, typed)
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			gracefulShutdown(s)
		}()

		<-tuiReady
		tuiSend(DeviceLineMsg{Text: deviceLineText(selected)})
	}

	if hy != nil {
		go func() {
			for {
				select {
				case ev := <-hy.Start():
					log.Info("hotkey_start_" + string(ev.Mode))
					s.orch.Listen()
				case <-hy.StopChan():
					log.Info("hotkey_stop")
					s.orch.Release()
				}
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	<-sigChan
	gracefulShutdown(s)
}

func saveConfig(store *config.Store, cfg *config.Config) error {
	path := store.File()
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}
