package main

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"aura/appstate"
	"aura/clipboard"
	"aura/speech"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type StateMsg struct{ From, To appstate.State }
type TranscriptMsg struct{ Text string }
type CapabilityMsg struct{ Err error }
type NoVoiceMsg struct{ Active bool }
type CopiedMsg struct{ Err error }
type DeviceLineMsg struct{ Text string }
type tickMsg time.Time

// Each terminal cell covers cellW x cellH canvas pixels, split into a
// top and bottom half-block.
const (
	cellW     = 4
	cellH     = 8
	infoLines = 6
)

// tuiControls is the orchestrator as seen from the keyboard and mouse.
type tuiControls interface {
	ToggleMic()
	Click()
	PointerMove(x, y float64)
	Resize(w, h int)
}

type tuiModel struct {
	ctl   tuiControls
	typed *speech.TypedRecognizer

	frame      *image.RGBA
	state      appstate.State
	level      float64
	transcript string
	count      int
	noVoice    bool
	capErr     string
	copied     string
	deviceLine string
	width      int
	height     int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex

	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once

	// written by the render loop and the orchestrator, read on tick
	latestFrame atomic.Pointer[image.RGBA]
	latestLevel atomic.Uint64
)

func presentFrame(img *image.RGBA) { latestFrame.Store(img) }

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards orchestrator output to the running program.
type tuiSink struct{}

func (tuiSink) StateChanged(from, to appstate.State) { tuiSend(StateMsg{From: from, To: to}) }
func (tuiSink) Transcript(text string)               { tuiSend(TranscriptMsg{Text: text}) }
func (tuiSink) Loudness(level float64)               { latestLevel.Store(math.Float64bits(level)) }
func (tuiSink) CapabilityError(err error)            { tuiSend(CapabilityMsg{Err: err}) }
func (tuiSink) NoVoiceWarning(active bool)           { tuiSend(NoVoiceMsg{Active: active}) }

func NewTUIProgram(ctl tuiControls, typed *speech.TypedRecognizer) *tea.Program {
	m := tuiModel{ctl: ctl, typed: typed}
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
}

func tuiTick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

// surfaceRows is how many terminal rows the surface gets.
func (m tuiModel) surfaceRows() int {
	return max(m.height-infoLines, 1)
}

func (m tuiModel) typing() bool {
	return m.typed != nil && m.state == appstate.Listening && m.typed.Active()
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: clipboard.Copy(text)}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctl.Resize(m.width*cellW, m.surfaceRows()*cellH)
		tuiReadyOnce.Do(func() { close(tuiReady) })

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress {
			m.ctl.PointerMove(float64(msg.X*cellW+cellW/2), float64(msg.Y*cellH+cellH/2))
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.frame = latestFrame.Load()
		if m.state == appstate.Listening {
			m.level = math.Float64frombits(latestLevel.Load())
		} else {
			m.level = 0
		}
		return m, tuiTick()

	case StateMsg:
		m.state = msg.To
		if msg.To != appstate.Listening {
			m.noVoice = false
		}
		if msg.To == appstate.Listening {
			m.capErr = ""
			m.copied = ""
		}

	case TranscriptMsg:
		m.count++
		m.transcript = msg.Text

	case CapabilityMsg:
		m.capErr = msg.Err.Error()

	case NoVoiceMsg:
		m.noVoice = msg.Active

	case CopiedMsg:
		if msg.Err != nil {
			m.copied = "copy failed: " + msg.Err.Error()
		} else {
			m.copied = "[✓ copied]"
		}

	case DeviceLineMsg:
		m.deviceLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.typing() {
		switch msg.Type {
		case tea.KeyEnter:
			m.typed.End()
		case tea.KeyBackspace:
			m.typed.Backspace()
		case tea.KeyEsc:
			m.ctl.ToggleMic()
		case tea.KeySpace:
			m.typed.Append(" ")
		case tea.KeyRunes:
			m.typed.Append(string(msg.Runes))
		}
		return m, nil
	}

	switch msg.String() {
	case " ", "enter":
		m.ctl.ToggleMic()
	case "1", "2", "3", "4":
		m.ctl.Click()
	case "c":
		if m.transcript != "" {
			return m, copyCmd(m.transcript)
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(renderSurface(m.frame, m.width, m.surfaceRows()))

	var info []string

	switch m.state {
	case appstate.Listening:
		status := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("● LISTENING")
		info = append(info, status+" "+levelBar(m.level, 20))
	case appstate.Processing:
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Render("◌ THINKING"))
	default:
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○ IDLE"))
	}

	switch {
	case m.capErr != "":
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("  ⚠ "+m.capErr))
	case m.noVoice:
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("  ⚠ no voice detected"))
	case m.typing():
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("  type to speak, enter to finish, esc to stop"))
	default:
		info = append(info, "")
	}

	if m.typing() {
		info = append(info, typingLine(m.typed.Text(), m.width))
	} else if m.transcript != "" {
		textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
		line := wrapText(fmt.Sprintf("#%d %s", m.count, m.transcript), max(m.width-12, 10))[0]
		line = textStyle.Render(line)
		if m.copied != "" {
			line += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(m.copied)
		}
		info = append(info, line)
	} else {
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("No transcripts yet"))
	}

	if m.deviceLine != "" {
		info = append(info, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.deviceLine))
	} else {
		info = append(info, "")
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	info = append(info,
		boldStyle.Render("space")+helpStyle.Render(" mic  ")+
			boldStyle.Render("1-4")+helpStyle.Render(" controls  ")+
			boldStyle.Render("c")+helpStyle.Render(" copy  ")+
			boldStyle.Render("q")+helpStyle.Render(" quit"),
		helpStyle.Render("aura "+version),
	)

	for i, line := range info {
		if i >= infoLines {
			break
		}
		b.WriteString(line)
		if i < len(info)-1 && i < infoLines-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// typingLine shows the end of the live transcript with a cursor.
func typingLine(text string, width int) string {
	limit := max(width-6, 10)
	rs := []rune(text)
	if len(rs) > limit {
		rs = append([]rune("…"), rs[len(rs)-limit+1:]...)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Render("> " + string(rs) + "▏")
}

func levelBar(level float64, width int) string {
	n := int(math.Round(math.Max(0, math.Min(level, 1)) * float64(width)))
	on := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(strings.Repeat("▮", n))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render(strings.Repeat("▯", width-n))
	return on + off
}

// cellStyles caches one style per (fg, bg) xterm-256 pair.
var (
	cellStylesMu sync.Mutex
	cellStyles   = map[[2]uint8]lipgloss.Style{}
)

func cellStyle(fg, bg uint8) lipgloss.Style {
	cellStylesMu.Lock()
	defer cellStylesMu.Unlock()
	key := [2]uint8{fg, bg}
	st, ok := cellStyles[key]
	if !ok {
		st = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fmt.Sprint(fg))).
			Background(lipgloss.Color(fmt.Sprint(bg)))
		cellStyles[key] = st
	}
	return st
}

// renderSurface draws img as cols x rows half-block cells, each half
// the brightest colour of its pixel block.
func renderSurface(img *image.RGBA, cols, rows int) string {
	var b strings.Builder
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			if img == nil {
				b.WriteByte(' ')
				continue
			}
			top := xterm256(poolMax(img, cx*cellW, cy*cellH, cellW, cellH/2))
			bot := xterm256(poolMax(img, cx*cellW, cy*cellH+cellH/2, cellW, cellH/2))
			if top == xtermBlack && bot == xtermBlack {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cellStyle(top, bot).Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func poolMax(img *image.RGBA, x0, y0, w, h int) (r, g, bl uint8) {
	bounds := img.Bounds()
	for y := y0; y < y0+h; y++ {
		if y >= bounds.Max.Y {
			break
		}
		for x := x0; x < x0+w; x++ {
			if x >= bounds.Max.X {
				break
			}
			i := img.PixOffset(x, y)
			r = max(r, img.Pix[i])
			g = max(g, img.Pix[i+1])
			bl = max(bl, img.Pix[i+2])
		}
	}
	return r, g, bl
}

const xtermBlack = 16

// xterm256 maps a colour onto the 6x6x6 cube.
func xterm256(r, g, b uint8) uint8 {
	return 16 + 36*cubeLevel(r) + 6*cubeLevel(g) + cubeLevel(b)
}

func cubeLevel(v uint8) uint8 {
	switch {
	case v < 48:
		return 0
	case v < 115:
		return 1
	}
	return (v - 35) / 40
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
