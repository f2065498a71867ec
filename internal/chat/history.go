package chat

import (
	"context"

	"github.com/chasedut/chatter/internal/api"
)

// Message roles as stored by the backend. Older chats use "bot" for replies.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleBot       = "bot"
)

// LoadChat makes id the active chat and replays its history into sink. The
// conversation is left untouched when the history cannot be loaded.
func (s *Service) LoadChat(ctx context.Context, id api.ID, sink Sink) (api.ChatHistory, error) {
	if err := s.acquire(); err != nil {
		return api.ChatHistory{}, err
	}
	defer s.busy.Store(false)

	sink.Lock()
	defer sink.Unlock()

	history, err := s.store.Select(ctx, id)
	if err != nil {
		sink.AppendError(ErrorText(err, loadFailed))
		return api.ChatHistory{}, err
	}

	sink.ClearConversation()
	sink.SetUsage(Usage{})
	sink.SetActiveChat(id)
	s.Replay(history, sink)
	sink.SessionsChanged()
	return history, nil
}

// Replay renders stored messages. Roles other than user and assistant are
// skipped.
func (s *Service) Replay(history api.ChatHistory, sink Sink) {
	for _, m := range history.Messages {
		switch m.Role {
		case RoleUser:
			sink.AppendUser(m.Content)
		case RoleAssistant, RoleBot:
			sink.BeginAssistant(false)
			sink.UpdateAssistant(s.md.Render(m.Content))
		}
	}
}

// DeleteChat removes a chat. Deleting the active chat also clears the
// conversation.
func (s *Service) DeleteChat(ctx context.Context, id api.ID, sink Sink) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.busy.Store(false)

	wasActive := s.store.ActiveID() == id
	if err := s.store.Delete(ctx, id); err != nil {
		sink.AppendError(ErrorText(err, "Failed to delete chat"))
		return err
	}
	if wasActive {
		sink.ClearConversation()
		sink.SetUsage(Usage{})
		sink.SetActiveChat("")
	}
	sink.SessionsChanged()
	return nil
}

// ClearChats deletes every chat and empties the conversation.
func (s *Service) ClearChats(ctx context.Context, sink Sink) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.busy.Store(false)

	if err := s.store.Clear(ctx); err != nil {
		sink.AppendError(ErrorText(err, "Failed to clear chat history"))
		return err
	}
	sink.ClearConversation()
	sink.SetUsage(Usage{})
	sink.SetActiveChat("")
	sink.SessionsChanged()
	return nil
}

// RefreshSessions reloads the session list.
func (s *Service) RefreshSessions(ctx context.Context, sink Sink) error {
	if err := s.store.Refresh(ctx); err != nil {
		return err
	}
	sink.SessionsChanged()
	return nil
}
