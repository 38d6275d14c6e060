package graphics

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	terminalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	terminalFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	terminalPixelOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render("█")
	terminalPixelOff   = " "
)

// TerminalBackend implements the Backend interface as a Bubble Tea TUI: a
// downsampled ASCII rendition of the frame buffer inside a Lipgloss frame.
type TerminalBackend struct {
	initialized bool
}

// terminalFrameMsg carries a new frame buffer into the Bubble Tea model.
type terminalFrameMsg [256 * 240]uint32

type terminalModel struct {
	title string
	ascii string
}

func (m terminalModel) Init() tea.Cmd { return nil }

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case terminalFrameMsg:
		m.ascii = renderFrameASCII([256 * 240]uint32(msg))
	}
	return m, nil
}

func (m terminalModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		terminalTitleStyle.Render(m.title),
		terminalFrameStyle.Render(m.ascii),
		"q to quit",
	)
}

// renderFrameASCII downsamples a 256x240 RGBA frame into a coarse
// block-character grid, one character per 4x8 pixel cell.
func renderFrameASCII(frameBuffer [256 * 240]uint32) string {
	var b strings.Builder
	for y := 0; y < 240; y += 8 {
		for x := 0; x < 256; x += 4 {
			if frameBuffer[y*256+x] == 0x000000 {
				b.WriteString(terminalPixelOff)
			} else {
				b.WriteString(terminalPixelOn)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// NewTerminalBackend creates a new terminal graphics backend.
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend.
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}
	b.initialized = true
	return nil
}

// CreateWindow launches the Bubble Tea program driving the TUI viewer.
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	program := tea.NewProgram(terminalModel{title: title})
	w := &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		program: program,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		program.Run() //nolint:errcheck // terminal exit errors surface via ShouldClose
	}()

	return w, nil
}

// Cleanup releases all terminal resources.
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false; the terminal backend produces real output.
func (b *TerminalBackend) IsHeadless() bool { return false }

// GetName returns the backend name.
func (b *TerminalBackend) GetName() string { return "Terminal" }

// TerminalWindow implements the Window interface over a running Bubble Tea
// program, forwarding frame buffers as Bubble Tea messages.
type TerminalWindow struct {
	title  string
	width  int
	height int

	program *tea.Program
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// SetTitle updates the window title shown by the TUI.
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions.
func (w *TerminalWindow) GetSize() (width, height int) { return w.width, w.height }

// ShouldClose returns true once the Bubble Tea program has exited (e.g. the
// user pressed q).
func (w *TerminalWindow) ShouldClose() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// SwapBuffers is a no-op; Bubble Tea repaints on every message.
func (w *TerminalWindow) SwapBuffers() {}

// PollEvents returns nil; Bubble Tea handles its own input loop internally
// and forwards quit via ShouldClose.
func (w *TerminalWindow) PollEvents() []InputEvent { return nil }

// RenderFrame forwards the frame buffer to the Bubble Tea program for
// ASCII-art rendering.
func (w *TerminalWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return nil
	}
	w.program.Send(terminalFrameMsg(frameBuffer))
	return nil
}

// Cleanup stops the Bubble Tea program.
func (w *TerminalWindow) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.program.Quit()
	return nil
}
