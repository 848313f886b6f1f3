//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"aura/audio"
	"aura/gui"
	"aura/orchestrator"
	"aura/render"
	"aura/speech"
)

var guiApp *gui.App

// Audio context initialized on main thread for macOS Core Audio compatibility
var guiAudioCtx audio.Context

func initGUI() {
	guiMode = true

	// Initialize audio context on main thread BEFORE Fyne starts.
	// macOS Core Audio requires main thread access for proper capture.
	var err error
	guiAudioCtx, err = audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}

	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(run)
	if err := gui.Run(guiApp); err != nil {
		guiAudioCtx.Close()
		panic(err)
	}
}

func guiSink() orchestrator.Sink { return guiApp }

func guiPresent() render.PresentFunc { return guiApp.Present }

func guiSize() (int, int) { return guiApp.Size() }

func guiBind(ctl gui.Controls, typed *speech.TypedRecognizer) {
	guiApp.Bind(ctl)
	if typed != nil {
		guiApp.BindTyping(typed, ctl)
	}
}

func guiQuit() {
	if guiApp != nil {
		guiApp.Quit()
	}
}
