package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/chat"
)

// Messages produced by chat operations running outside the update loop.
type (
	lockMsg              struct{}
	unlockMsg            struct{}
	userEntryMsg         struct{ content string }
	assistantBeginMsg    struct{ search bool }
	assistantUpdateMsg   struct{ rendered string }
	errorEntryMsg        struct{ text string }
	clearConversationMsg struct{}
	usageMsg             chat.Usage
	activeChatMsg        struct{ id api.ID }
	clearInputMsg        struct{}
	hideImageMsg         struct{}
	sessionsChangedMsg   struct{}
	replyMsg             chat.Reply
)

// eventSink forwards chat effects to the program as messages. The app
// delivers them in the order they were published. Lock changes go through
// deliver, which never drops a message.
type eventSink struct {
	publish func(tea.Msg)
	deliver func(tea.Msg)
}

var _ chat.Sink = eventSink{}

func (s eventSink) Lock()                           { s.deliver(lockMsg{}) }
func (s eventSink) Unlock()                         { s.deliver(unlockMsg{}) }
func (s eventSink) AppendUser(content string)       { s.publish(userEntryMsg{content}) }
func (s eventSink) BeginAssistant(search bool)      { s.publish(assistantBeginMsg{search}) }
func (s eventSink) UpdateAssistant(rendered string) { s.publish(assistantUpdateMsg{rendered}) }
func (s eventSink) AppendError(text string)         { s.publish(errorEntryMsg{text}) }
func (s eventSink) ClearConversation()              { s.publish(clearConversationMsg{}) }
func (s eventSink) SetUsage(u chat.Usage)           { s.publish(usageMsg(u)) }
func (s eventSink) SetActiveChat(id api.ID)         { s.publish(activeChatMsg{id}) }
func (s eventSink) ClearInput()                     { s.publish(clearInputMsg{}) }
func (s eventSink) HideImagePreview()               { s.publish(hideImageMsg{}) }
func (s eventSink) SessionsChanged()                { s.publish(sessionsChangedMsg{}) }
