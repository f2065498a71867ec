// Package sidebar renders the chat list grouped into date sections, with a
// marker on the active chat and a filter box.
package sidebar

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/session"
	"github.com/chasedut/chatter/internal/tui/styles"
	"github.com/chasedut/chatter/internal/tui/util"
)

const activeMarker = "● "

type (
	// SelectChatMsg asks to open a chat.
	SelectChatMsg struct{ ID api.ID }
	// DeleteChatMsg asks to delete a chat.
	DeleteChatMsg struct{ ID api.ID }
	// ClearChatsMsg asks to delete every chat.
	ClearChatsMsg struct{}
)

type Model struct {
	width, height int
	focused       bool
	filtering     bool

	store  *session.Store
	filter textinput.Model
	keyMap KeyMap
	now    func() time.Time

	groups []session.Group
	// items is the flattened display order of groups.
	items  []api.ChatSummary
	cursor int
	active api.ID
}

func New(store *session.Store) *Model {
	ti := textinput.New()
	ti.Placeholder = "Filter chats..."
	ti.Prompt = "/ "
	ti.CharLimit = 64

	return &Model{
		store:  store,
		filter: ti,
		keyMap: DefaultKeyMap(),
		now:    time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !m.focused {
		return m, nil
	}

	if m.filtering {
		switch {
		case key.Matches(keyMsg, m.keyMap.Cancel):
			m.filter.SetValue("")
			m.stopFiltering()
			m.Refresh()
			return m, nil
		case key.Matches(keyMsg, m.keyMap.Select):
			m.stopFiltering()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.Refresh()
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(keyMsg, m.keyMap.Down):
		m.cursor = min(len(m.items)-1, m.cursor+1)
		m.cursor = max(0, m.cursor)
	case key.Matches(keyMsg, m.keyMap.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(keyMsg, m.keyMap.Cancel):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.Refresh()
		}
	case key.Matches(keyMsg, m.keyMap.Select):
		if c, ok := m.Selected(); ok {
			return m, util.CmdHandler(SelectChatMsg{ID: c.ID})
		}
	case key.Matches(keyMsg, m.keyMap.Delete):
		if c, ok := m.Selected(); ok {
			return m, util.CmdHandler(DeleteChatMsg{ID: c.ID})
		}
	case key.Matches(keyMsg, m.keyMap.ClearAll):
		if len(m.items) > 0 {
			return m, util.CmdHandler(ClearChatsMsg{})
		}
	}
	return m, nil
}

func (m *Model) stopFiltering() {
	m.filtering = false
	m.filter.Blur()
}

// Refresh regroups the store's chats under the current filter. The cursor
// stays on the same chat when it is still listed.
func (m *Model) Refresh() {
	var current api.ID
	if c, ok := m.Selected(); ok {
		current = c.ID
	}

	m.groups = m.store.Groups(m.filter.Value(), m.now())
	m.items = m.items[:0]
	for _, g := range m.groups {
		m.items = append(m.items, g.Chats...)
	}

	m.cursor = max(0, min(m.cursor, len(m.items)-1))
	if current != "" {
		if i := slices.IndexFunc(m.items, func(c api.ChatSummary) bool { return c.ID == current }); i >= 0 {
			m.cursor = i
		}
	}
}

func (m *Model) Selected() (api.ChatSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return api.ChatSummary{}, false
	}
	return m.items[m.cursor], true
}

// Groups returns the sections currently displayed.
func (m *Model) Groups() []session.Group {
	return m.groups
}

func (m *Model) SetActive(id api.ID) {
	m.active = id
	if i := slices.IndexFunc(m.items, func(c api.ChatSummary) bool { return c.ID == id }); i >= 0 {
		m.cursor = i
	}
}

func (m *Model) Active() api.ID {
	return m.active
}

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.filter.SetWidth(max(1, width-4))
}

func (m *Model) Focus() {
	m.focused = true
}

func (m *Model) Blur() {
	m.focused = false
	m.stopFiltering()
}

// Filtering reports whether the filter box has the keyboard.
func (m *Model) Filtering() bool {
	return m.filtering
}

func (m *Model) View() string {
	t := styles.CurrentTheme()
	inner := max(1, m.width-2)

	header := t.S().Title.Render("Chats")
	var filterLine string
	if m.filtering || m.filter.Value() != "" {
		filterLine = m.filter.View()
	} else {
		filterLine = t.S().Subtle.Render("/ to filter")
	}

	var (
		lines      []string
		cursorLine int
	)
	if len(m.items) == 0 {
		lines = append(lines, t.S().Muted.Render("No chats yet"))
	}
	i := 0
	for _, g := range m.groups {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, t.S().Section.Render(string(g.Bucket)))
		for _, c := range g.Chats {
			if i == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderItem(c, i == m.cursor, inner))
			i++
		}
	}

	listHeight := max(1, m.height-3)
	start := 0
	if cursorLine >= listHeight {
		start = cursorLine - listHeight + 1
	}
	end := min(len(lines), start+listHeight)

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		filterLine,
		"",
		strings.Join(lines[start:end], "\n"),
	)

	border := t.Border
	if m.focused {
		border = t.BorderFocus
	}
	return t.S().Base.
		Width(m.width).
		Height(m.height).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(border).
		Render(content)
}

func (m *Model) renderItem(c api.ChatSummary, selected bool, width int) string {
	t := styles.CurrentTheme()

	marker := "  "
	if c.ID == m.active {
		marker = activeMarker
	}
	date := " " + session.FormatDate(c.CreatedAt, time.Local)
	title := c.Title
	if title == "" {
		title = session.DefaultTitle
	}
	titleWidth := max(1, width-lipgloss.Width(marker)-lipgloss.Width(date))
	title = ansi.Truncate(title, titleWidth, "…")
	pad := strings.Repeat(" ", max(0, titleWidth-lipgloss.Width(title)))

	switch {
	case selected && m.focused:
		return t.S().Selected.Render(marker + title + pad + date)
	case c.ID == m.active:
		return t.S().Active.Render(marker+title+pad) + t.S().Subtle.Render(date)
	default:
		return t.S().Text.Render(marker+title+pad) + t.S().Subtle.Render(date)
	}
}

func (m *Model) KeyMap() KeyMap {
	return m.keyMap
}
