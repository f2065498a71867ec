package chat

import "github.com/chasedut/chatter/internal/api"

// Usage is the context window usage reported by the backend.
type Usage struct {
	Tokens    int64
	MaxTokens int64
}

// Sink receives the visible effects of a chat operation. Implementations are
// called from the goroutine running the operation, in order.
type Sink interface {
	// Lock disables input for the duration of an operation.
	Lock()
	// Unlock re-enables input and gives it focus again. It is always called
	// once Lock was, regardless of the outcome.
	Unlock()

	AppendUser(content string)
	// BeginAssistant starts a new assistant entry. Later UpdateAssistant calls
	// replace its content.
	BeginAssistant(searchEnhanced bool)
	UpdateAssistant(rendered string)
	// AppendError adds a terminal error entry, already formatted for display.
	AppendError(text string)
	ClearConversation()

	SetUsage(Usage)
	SetActiveChat(id api.ID)
	ClearInput()
	HideImagePreview()
	// SessionsChanged signals the session list was refreshed or edited.
	SessionsChanged()
}

// Discard is a Sink that ignores everything.
type Discard struct{}

func (Discard) Lock()                  {}
func (Discard) Unlock()                {}
func (Discard) AppendUser(string)      {}
func (Discard) BeginAssistant(bool)    {}
func (Discard) UpdateAssistant(string) {}
func (Discard) AppendError(string)     {}
func (Discard) ClearConversation()     {}
func (Discard) SetUsage(Usage)         {}
func (Discard) SetActiveChat(api.ID)   {}
func (Discard) ClearInput()            {}
func (Discard) HideImagePreview()      {}
func (Discard) SessionsChanged()       {}
