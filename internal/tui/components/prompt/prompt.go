// Package prompt is a small overlay asking for one line of input, used for
// the image path and the API key.
package prompt

import (
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/chasedut/chatter/internal/tui/styles"
	"github.com/chasedut/chatter/internal/tui/util"
)

const defaultWidth = 60

type ID string

const (
	ImagePromptID  ID = "image"
	APIKeyPromptID ID = "api_key"
)

type (
	// SubmitMsg carries the entered value.
	SubmitMsg struct {
		ID    ID
		Value string
	}
	// CloseMsg is sent when the prompt is dismissed.
	CloseMsg struct{ ID ID }
)

type KeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

type Model struct {
	id      ID
	title   string
	hint    string
	width   int
	wWidth  int
	wHeight int
	input   textinput.Model
	keyMap  KeyMap
}

type Option func(*Model)

func WithPlaceholder(p string) Option {
	return func(m *Model) { m.input.Placeholder = p }
}

func WithHint(h string) Option {
	return func(m *Model) { m.hint = h }
}

// WithValue pre-fills the input.
func WithValue(v string) Option {
	return func(m *Model) { m.input.SetValue(v) }
}

func New(id ID, title string, opts ...Option) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 1024

	m := &Model{
		id:     id,
		title:  title,
		width:  defaultWidth,
		input:  ti,
		keyMap: DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.input.SetWidth(m.width - 6)
	return m
}

func (m *Model) ID() ID {
	return m.id
}

func (m *Model) Init() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.wWidth, m.wHeight = msg.Width, msg.Height
		m.width = min(defaultWidth, max(20, msg.Width-4))
		m.input.SetWidth(m.width - 6)
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keyMap.Submit):
			return m, util.CmdHandler(SubmitMsg{ID: m.id, Value: m.input.Value()})
		case key.Matches(msg, m.keyMap.Cancel):
			return m, util.CmdHandler(CloseMsg{ID: m.id})
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) View() string {
	t := styles.CurrentTheme()
	parts := []string{t.S().Title.Render(m.title), "", m.input.View()}
	if m.hint != "" {
		parts = append(parts, "", t.S().Muted.Render(m.hint))
	}
	parts = append(parts, "", t.S().Subtle.Render("enter: confirm • esc: cancel"))

	return t.S().Base.
		Width(m.width).
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Position returns the overlay's row and column, centered in the window.
func (m *Model) Position() (int, int) {
	width, height := m.wWidth, m.wHeight
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	row := max(2, height/2-4)
	col := max(2, width/2-m.width/2)
	return row, col
}
