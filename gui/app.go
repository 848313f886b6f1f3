//go:build gui

// Package gui hosts the render surface in a floating fyne window.
package gui

import (
	"image"
	"image/color"
	"sync"

	"aura/appstate"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Controls is the part of the orchestrator the window drives.
type Controls interface {
	ToggleMic()
	Click()
	PointerMove(x, y float64)
	Resize(w, h int)
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	surface *SurfaceWidget
	status  *canvas.Text
	onReady func()
	ctl     Controls
	size    fyne.Size
	posX    int
	posY    int

	mu       sync.Mutex
	warning  bool
	lastText string
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady, size: fyne.NewSize(480, 480)}
}

// Bind routes surface input to ctl. Call before Run.
func (a *App) Bind(ctl Controls) {
	if a.surface == nil {
		a.surface = NewSurfaceWidget()
	}
	a.mu.Lock()
	a.ctl = ctl
	a.mu.Unlock()
	a.surface.mu.Lock()
	a.surface.onPointer = ctl.PointerMove
	a.surface.onResize = ctl.Resize
	a.surface.onTap = ctl.ToggleMic
	a.surface.onSecondary = ctl.Click
	a.surface.mu.Unlock()
}

// Typing receives keyboard input while listening.
type Typing interface {
	Active() bool
	Append(s string)
	Backspace()
	End()
}

// BindTyping routes window key presses to t while a session is open.
// Space and Enter toggle the mic otherwise.
func (a *App) BindTyping(t Typing, ctl Controls) {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		c := a.window.Canvas()
		c.SetOnTypedRune(func(r rune) {
			if t.Active() {
				t.Append(string(r))
			}
		})
		c.SetOnTypedKey(func(e *fyne.KeyEvent) {
			switch e.Name {
			case fyne.KeyReturn, fyne.KeyEnter:
				if t.Active() {
					t.End()
				} else {
					ctl.ToggleMic()
				}
			case fyne.KeySpace:
				// typed as a rune while active
				if !t.Active() {
					ctl.ToggleMic()
				}
			case fyne.KeyBackspace:
				if t.Active() {
					t.Backspace()
				}
			case fyne.KeyEscape:
				if t.Active() {
					ctl.ToggleMic()
				}
			}
		})
	})
}

// Size is the initial surface size in window units.
func (a *App) Size() (int, int) { return int(a.size.Width), int(a.size.Height) }

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.aura.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", trayIcon())
		menu := fyne.NewMenu("aura",
			fyne.NewMenuItem("Listen", a.toggleMic),
			fyne.NewMenuItem("Show", a.Show),
			fyne.NewMenuItem("Hide", a.Hide),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	var screenW, screenH int
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080
	}

	a.window = a.fyneApp.NewWindow("aura")
	if a.surface == nil {
		a.surface = NewSurfaceWidget()
	}
	a.status = canvas.NewText("", color.NRGBA{R: 226, G: 232, B: 240, A: 200})
	a.status.Alignment = fyne.TextAlignCenter
	a.status.TextSize = 14

	a.window.SetContent(container.NewStack(
		a.surface,
		container.NewVBox(layout.NewSpacer(), a.status),
	))
	a.window.SetPadded(false)
	a.window.Resize(a.size)

	// bottom-center, clear of the dock
	a.posX = (screenW - int(a.size.Width)) / 2
	a.posY = screenH - int(a.size.Height) - 20

	go a.onReady()

	a.Show()
	a.fyneApp.Run()
	return nil
}

func (a *App) toggleMic() {
	a.mu.Lock()
	ctl := a.ctl
	a.mu.Unlock()
	if ctl != nil {
		ctl.ToggleMic()
	}
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		fyne.Do(a.fyneApp.Quit)
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		a.window.Show()
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
		}
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

// Present is the render loop's frame consumer.
func (a *App) Present(img *image.RGBA) {
	if a.surface != nil {
		a.surface.SetFrame(img)
	}
}

func (a *App) setStatus(text string) {
	fyne.Do(func() {
		if a.status == nil {
			return
		}
		a.status.Text = text
		a.status.Refresh()
	})
}

func (a *App) StateChanged(_, to appstate.State) {
	switch to {
	case appstate.Listening:
		a.setStatus("listening")
	case appstate.Processing:
		a.setStatus("thinking")
	case appstate.Idle:
		a.mu.Lock()
		text := a.lastText
		a.mu.Unlock()
		a.setStatus(text)
	}
}

func (a *App) Transcript(text string) {
	a.mu.Lock()
	a.lastText = text
	a.mu.Unlock()
	a.setStatus(text)
}

func (a *App) Loudness(float64) {}

func (a *App) CapabilityError(err error) { a.setStatus(err.Error()) }

func (a *App) NoVoiceWarning(active bool) {
	a.mu.Lock()
	changed := a.warning != active
	a.warning = active
	a.mu.Unlock()
	if !changed {
		return
	}
	if active {
		a.setStatus("no voice detected")
	} else {
		a.setStatus("listening")
	}
}
