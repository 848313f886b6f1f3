//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

// Hotkey and window APIs on macOS and Windows must run on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	initCrashLog()
	if wantsGUI(os.Args[1:]) {
		// initGUI keeps the main thread and starts run itself.
		initGUI()
		return
	}
	mainthread.Init(run)
}
