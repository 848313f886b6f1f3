package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"aura/shutdown"
)

// resetTerminal undoes raw mode left behind by an interrupted picker.
func resetTerminal() {
	if runtime.GOOS == "windows" {
		return
	}
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = os.Stdin
	cmd.Run()
}

func setupInterruptHandler() {
	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	go func() {
		<-sig
		resetTerminal()
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	}()
}
