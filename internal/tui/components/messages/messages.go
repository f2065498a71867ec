// Package messages renders the conversation pane.
package messages

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleError
)

type Entry struct {
	Role Role
	// Content is display ready. Assistant content is already rendered
	// Markdown.
	Content string
	Search  bool
}

type KeyMap struct {
	PageUp   key.Binding
	PageDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

type Model struct {
	width, height int
	entries       []Entry
	// scroll counts lines up from the bottom.
	scroll int
	keyMap KeyMap
	styles Styles
	// Empty renders the pane when there are no entries.
	Empty func(width, height int) string
}

// Styles are supplied by the caller so the pane follows theme changes.
type Styles struct {
	User, Assistant, Search, Error lipgloss.Style
}

func New() *Model {
	return &Model{keyMap: DefaultKeyMap()}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		page := max(1, m.height-2)
		switch {
		case key.Matches(msg, m.keyMap.PageUp):
			m.scroll += page
		case key.Matches(msg, m.keyMap.PageDown):
			m.scroll = max(0, m.scroll-page)
		}
	}
	return m, nil
}

func (m *Model) SetStyles(s Styles) {
	m.styles = s
}

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}

func (m *Model) AppendUser(content string) {
	m.append(Entry{Role: RoleUser, Content: content})
}

func (m *Model) BeginAssistant(search bool) {
	m.append(Entry{Role: RoleAssistant, Search: search})
}

// UpdateAssistant replaces the content of the newest assistant entry.
func (m *Model) UpdateAssistant(rendered string) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Role == RoleAssistant {
			m.entries[i].Content = rendered
			return
		}
	}
	m.append(Entry{Role: RoleAssistant, Content: rendered})
}

func (m *Model) AppendError(text string) {
	m.append(Entry{Role: RoleError, Content: text})
}

func (m *Model) append(e Entry) {
	m.entries = append(m.entries, e)
	m.scroll = 0
}

func (m *Model) Clear() {
	m.entries = nil
	m.scroll = 0
}

func (m *Model) Entries() []Entry {
	return m.entries
}

func (m *Model) View() string {
	if len(m.entries) == 0 && m.Empty != nil {
		return m.Empty(m.width, m.height)
	}

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		blocks = append(blocks, m.renderEntry(e))
	}
	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")

	height := max(1, m.height)
	m.scroll = min(m.scroll, max(0, len(lines)-height))
	end := len(lines) - m.scroll
	start := max(0, end-height)
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(strings.Join(lines[start:end], "\n"))
}

func (m *Model) renderEntry(e Entry) string {
	body := lipgloss.NewStyle().PaddingLeft(2).Width(max(1, m.width-1))
	switch e.Role {
	case RoleUser:
		return m.styles.User.Render("You") + "\n" + body.Render(e.Content)
	case RoleError:
		return m.styles.Error.Render(e.Content)
	default:
		label := m.styles.Assistant.Render("Assistant")
		if e.Search {
			label += " " + m.styles.Search.Render("web search")
		}
		return label + "\n" + e.Content
	}
}
