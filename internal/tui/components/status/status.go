// Package status renders the bottom bar: transient info messages, token
// usage, the current model settings and key help.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/tui/styles"
	"github.com/chasedut/chatter/internal/tui/util"
)

const defaultTTL = 5 * time.Second

type Model struct {
	width    int
	info     util.InfoMsg
	infoID   int
	usage    chat.Usage
	settings string
	help     help.Model
	keyMap   help.KeyMap
}

type clearMsg struct{ id int }

func New(keyMap help.KeyMap) *Model {
	return &Model{help: help.New(), keyMap: keyMap}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case util.InfoMsg:
		m.info = msg
		m.infoID++
		ttl := msg.TTL
		if ttl == 0 {
			ttl = defaultTTL
		}
		id := m.infoID
		return m, tea.Tick(ttl, func(time.Time) tea.Msg { return clearMsg{id: id} })
	case clearMsg:
		if msg.id == m.infoID {
			m.info = util.InfoMsg{}
		}
	case util.ClearStatusMsg:
		m.info = util.InfoMsg{}
	}
	return m, nil
}

// Info returns the message currently shown, empty when none.
func (m *Model) Info() string {
	return m.info.Msg
}

func (m *Model) SetUsage(u chat.Usage) {
	m.usage = u
}

func (m *Model) Usage() chat.Usage {
	return m.usage
}

// SetSettings sets the right hand summary, e.g. model and search mode.
func (m *Model) SetSettings(s string) {
	m.settings = s
}

func (m *Model) SetKeyMap(km help.KeyMap) {
	m.keyMap = km
}

func (m *Model) ToggleFullHelp() {
	m.help.ShowAll = !m.help.ShowAll
}

func (m *Model) ShowingFullHelp() bool {
	return m.help.ShowAll
}

func (m *Model) SetWidth(width int) {
	m.width = width
	m.help.Width = width
}

// FormatUsage renders token usage, or nothing before the first report.
func FormatUsage(u chat.Usage) string {
	switch {
	case u.Tokens == 0 && u.MaxTokens == 0:
		return ""
	case u.MaxTokens > 0:
		return fmt.Sprintf("%d/%d tokens (%d%%)", u.Tokens, u.MaxTokens, u.Tokens*100/u.MaxTokens)
	default:
		return fmt.Sprintf("%d tokens", u.Tokens)
	}
}

func (m *Model) View() string {
	t := styles.CurrentTheme()
	m.help.Styles = t.S().Help

	var left string
	switch m.info.Type {
	case util.InfoTypeError:
		left = t.S().ErrorText.Render(m.info.Msg)
	case util.InfoTypeWarn:
		left = t.S().Base.Foreground(t.Warning).Render(m.info.Msg)
	default:
		left = t.S().Base.Foreground(t.Info).Render(m.info.Msg)
	}

	var right []string
	if u := FormatUsage(m.usage); u != "" {
		right = append(right, u)
	}
	if m.settings != "" {
		right = append(right, m.settings)
	}
	rightText := t.S().Muted.Render(strings.Join(right, " · "))

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(rightText)-2)
	bar := t.S().Base.Padding(0, 1).Render(left + strings.Repeat(" ", gap) + rightText)

	var helpView string
	if m.keyMap != nil {
		helpView = t.S().Base.Padding(0, 1).Render(m.help.View(m.keyMap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, helpView)
}

// Height is the number of lines View renders.
func (m *Model) Height() int {
	if m.keyMap == nil {
		return 1
	}
	if !m.help.ShowAll {
		return 2
	}
	h := 0
	for _, col := range m.keyMap.FullHelp() {
		h = max(h, len(col))
	}
	return 1 + h
}
