//go:build !gui

package main

import (
	"aura/audio"
	"aura/orchestrator"
	"aura/render"
	"aura/speech"
)

// Stubs for non-GUI builds (these are never used since guiMode is false)
var guiAudioCtx audio.Context

func initGUI() {
	panic("aura: built without GUI support (rebuild with -tags gui)")
}

func guiSink() orchestrator.Sink { return nil }

func guiPresent() render.PresentFunc { return nil }

func guiSize() (int, int) { return 0, 0 }

func guiBind(tuiControls, *speech.TypedRecognizer) {}

func guiQuit() {}
