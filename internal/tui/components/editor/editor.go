// Package editor is the message input. It shows a spinner instead of the
// input while a request is running.
package editor

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/chasedut/chatter/internal/tui/styles"
)

const (
	placeholder       = "Type your message..."
	searchPlaceholder = "Type your message (web search on)..."
)

type Model struct {
	width   int
	input   textinput.Model
	spinner spinner.Model
	locked  bool
	search  bool
	image   string
}

func New() *Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 4000

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{input: ti, spinner: s}
}

func (m *Model) Init() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.locked {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyPressMsg:
		if m.locked {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Lock disables input and starts the spinner.
func (m *Model) Lock() tea.Cmd {
	m.locked = true
	m.input.Blur()
	return m.spinner.Tick
}

// Unlock re-enables input and focuses it.
func (m *Model) Unlock() tea.Cmd {
	m.locked = false
	return m.input.Focus()
}

func (m *Model) Locked() bool {
	return m.locked
}

func (m *Model) Focus() tea.Cmd {
	if m.locked {
		return nil
	}
	return m.input.Focus()
}

func (m *Model) Blur() {
	m.input.Blur()
}

func (m *Model) Value() string {
	return m.input.Value()
}

func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
}

func (m *Model) Reset() {
	m.input.SetValue("")
}

func (m *Model) SetSearch(on bool) {
	m.search = on
	if on {
		m.input.Placeholder = searchPlaceholder
	} else {
		m.input.Placeholder = placeholder
	}
}

// SetImage shows the attachment indicator. An empty path hides it.
func (m *Model) SetImage(path string) {
	m.image = path
}

func (m *Model) Image() string {
	return m.image
}

func (m *Model) SetWidth(width int) {
	m.width = width
	m.input.SetWidth(max(1, width-6))
}

// Height is the number of lines View renders.
func (m *Model) Height() int {
	return 4
}

func (m *Model) View() string {
	t := styles.CurrentTheme()
	m.spinner.Style = t.S().Base.Foreground(t.Primary)

	line := m.input.View()
	if m.locked {
		line = m.spinner.View() + t.S().Muted.Render(" Thinking...")
	}

	var attachment string
	if m.image != "" {
		attachment = t.S().Subtle.Render("image: " + filepath.Base(m.image))
	}

	return t.S().Base.
		Width(m.width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, line, attachment))
}
