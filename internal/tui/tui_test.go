package tui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/app"
	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/config"
	"github.com/chasedut/chatter/internal/db"
	"github.com/chasedut/chatter/internal/imageprep"
	"github.com/chasedut/chatter/internal/prefs"
	"github.com/chasedut/chatter/internal/tui/components/messages"
	"github.com/chasedut/chatter/internal/tui/components/prompt"
	"github.com/chasedut/chatter/internal/tui/components/sidebar"
	"github.com/chasedut/chatter/internal/tui/util"
)

func newTestModel(t *testing.T) *appModel {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	conn, err := db.Connect(t.Context(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cfg := &config.Config{
		Server:  config.ServerConfig{URL: srv.URL, RequestTimeout: 5},
		Options: &config.Options{DataDirectory: dir, WordWrap: 80, DefaultModel: "gemma"},
	}
	a, err := app.New(t.Context(), conn, cfg)
	require.NoError(t, err)
	return newAppModel(a, 120, 40)
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	assert.Equal(t, 140, m.wWidth)
	assert.Equal(t, 50, m.wHeight)
	assert.True(t, m.showSidebar)

	m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	assert.False(t, m.showSidebar)
}

func TestUpdate_WindowSizeZero(t *testing.T) {
	m := newTestModel(t)
	assert.NotPanics(t, func() {
		m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
		m.View()
	})
}

func TestUpdate_ChatEffects(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(lockMsg{})
	assert.NotNil(t, cmd, "locking starts the spinner")
	assert.True(t, m.locked)
	assert.True(t, m.editor.Locked())

	m.Update(userEntryMsg{content: "Hello"})
	m.Update(assistantBeginMsg{search: true})
	m.Update(assistantUpdateMsg{rendered: "Hi"})
	m.Update(assistantUpdateMsg{rendered: "Hi there"})
	m.Update(usageMsg{Tokens: 12, MaxTokens: 100})
	m.Update(activeChatMsg{id: "42"})
	m.Update(replyMsg{ChatID: "42", Content: "Hi there"})
	m.Update(unlockMsg{})

	assert.Equal(t, []messages.Entry{
		{Role: messages.RoleUser, Content: "Hello"},
		{Role: messages.RoleAssistant, Content: "Hi there", Search: true},
	}, m.messages.Entries())
	assert.Equal(t, chat.Usage{Tokens: 12, MaxTokens: 100}, m.status.Usage())
	assert.Equal(t, api.ID("42"), m.sidebar.Active())
	assert.Equal(t, "Hi there", m.lastReply)
	assert.False(t, m.locked)
	assert.False(t, m.editor.Locked())
	assert.Equal(t, focusEditor, m.focus)
}

func TestEventSink_LockStateIsDelivered(t *testing.T) {
	var published, delivered []tea.Msg
	sink := eventSink{
		publish: func(msg tea.Msg) { published = append(published, msg) },
		deliver: func(msg tea.Msg) { delivered = append(delivered, msg) },
	}

	sink.Lock()
	sink.AppendUser("Hello")
	sink.Unlock()

	assert.Equal(t, []tea.Msg{lockMsg{}, unlockMsg{}}, delivered)
	assert.Equal(t, []tea.Msg{userEntryMsg{content: "Hello"}}, published)
}

func TestUpdate_ErrorAndClear(t *testing.T) {
	m := newTestModel(t)
	m.editor.SetValue("draft")

	m.Update(errorEntryMsg{text: "Error: Failed to send message"})
	require.Len(t, m.messages.Entries(), 1)
	assert.Equal(t, messages.RoleError, m.messages.Entries()[0].Role)
	assert.Equal(t, "draft", m.editor.Value(), "input is kept after a failure")

	m.Update(clearInputMsg{})
	m.Update(clearConversationMsg{})
	assert.Empty(t, m.messages.Entries())
	assert.Empty(t, m.editor.Value())
}

func TestUpdate_SessionsChanged(t *testing.T) {
	m := newTestModel(t)
	m.app.Sessions.Add(api.ChatSummary{ID: "1", Title: "First", CreatedAt: time.Now()})
	m.app.Sessions.SetActive("1")

	m.Update(sessionsChangedMsg{})
	groups := m.sidebar.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Today", string(groups[0].Bucket))
	assert.Equal(t, api.ID("1"), m.sidebar.Active())
}

func TestUpdate_SidebarSelect(t *testing.T) {
	m := newTestModel(t)
	m.app.Sessions.Add(api.ChatSummary{ID: "1", Title: "First", CreatedAt: time.Now()})
	m.Update(sessionsChangedMsg{})

	m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, focusSidebar, m.focus)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, sidebar.SelectChatMsg{ID: "1"}, cmd())

	m.Update(lockMsg{})
	_, cmd = m.Update(sidebar.SelectChatMsg{ID: "1"})
	assert.Nil(t, cmd, "selection is ignored while a request runs")
}

func TestUpdate_ClearChatsNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(sidebar.ClearChatsMsg{})
	require.NotNil(t, cmd)
	info, ok := cmd().(util.InfoMsg)
	require.True(t, ok)
	assert.Equal(t, util.InfoTypeWarn, info.Type)
	assert.False(t, m.clearArmed.IsZero())

	_, cmd = m.Update(sidebar.ClearChatsMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.clearArmed.IsZero())
}

func TestUpdate_SendIgnoredWhileLocked(t *testing.T) {
	m := newTestModel(t)
	m.editor.SetValue("hello")
	m.Update(lockMsg{})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)

	_, cmd = m.Update(ctrl('n'))
	assert.Nil(t, cmd)
}

func TestUpdate_SendWithoutKeyAsksForKey(t *testing.T) {
	m := newTestModel(t)
	m.editor.SetValue("hello")

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, m.prompt)
	assert.Equal(t, prompt.APIKeyPromptID, m.prompt.ID())

	m.Update(prompt.CloseMsg{ID: prompt.APIKeyPromptID})
	assert.Nil(t, m.prompt)
}

func TestUpdate_Preferences(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(ctrl('t'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(prefsUpdatedMsg)
	require.True(t, ok)
	assert.Equal(t, prefs.ThemeLight, msg.prefs.Theme)

	m.Update(msg)
	assert.Equal(t, prefs.ThemeLight, m.prefs.Theme)

	_, cmd = m.Update(ctrl('s'))
	msg = cmd().(prefsUpdatedMsg)
	assert.True(t, msg.prefs.UseSearch)
}

func TestUpdate_CopyWithoutReply(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(ctrl('y'))
	require.NotNil(t, cmd)
	info := cmd().(util.InfoMsg)
	assert.Equal(t, util.InfoTypeWarn, info.Type)
}

func TestUpdate_RemoveImage(t *testing.T) {
	m := newTestModel(t)
	img := &imageprep.Image{Filename: "cat.png", Width: 10, Height: 10}
	_, cmd := m.Update(imageAttachedMsg{path: "/tmp/cat.png", image: img})
	require.NotNil(t, cmd)
	assert.Equal(t, "/tmp/cat.png", m.editor.Image())
	assert.Same(t, img, m.image)

	m.Update(hideImageMsg{})
	assert.Empty(t, m.editor.Image())
	assert.Nil(t, m.image)
}

func TestCycle(t *testing.T) {
	assert.Equal(t, "gemini", cycle(prefs.APITypes, "openai"))
	assert.Equal(t, "openai", cycle(prefs.APITypes, "gemini"))
	assert.Equal(t, "gemma", cycle(prefs.ModelTypes, "unknown"))
}

func TestLastAssistant(t *testing.T) {
	h := api.ChatHistory{Messages: []api.Message{
		{Role: "user", Content: "a"},
		{Role: "bot", Content: "b"},
		{Role: "user", Content: "c"},
	}}
	assert.Equal(t, "b", lastAssistant(h))
	assert.Empty(t, lastAssistant(api.ChatHistory{}))
}
