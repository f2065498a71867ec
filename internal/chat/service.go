// Package chat drives the conversation: it creates sessions, submits
// messages, consumes the streamed reply and runs one-shot searches, reporting
// every visible effect to a Sink.
package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/imageprep"
	"github.com/chasedut/chatter/internal/markdown"
	"github.com/chasedut/chatter/internal/session"
)

// DefaultImageMessage is sent when an image is attached without any text.
const DefaultImageMessage = "Image uploaded"

const (
	sendFailed   = "Failed to send message"
	createFailed = "Failed to create new chat"
	uploadFailed = "Failed to upload image"
	searchFailed = "Failed to perform search"
	loadFailed   = "Failed to load chat"
)

type Service struct {
	client *api.Client
	store  *session.Store
	md     markdown.Formatter

	busy atomic.Bool
}

func NewService(client *api.Client, store *session.Store, md markdown.Formatter) *Service {
	if md == nil {
		md = markdown.Plain{}
	}
	return &Service{client: client, store: store, md: md}
}

// Busy reports whether an operation is running.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

func (s *Service) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

type SendRequest struct {
	Message   string
	Image     *imageprep.Image
	ModelType string
	UseSearch bool
	APIKey    string
	APIType   string
}

// Reply summarizes a completed response.
type Reply struct {
	ChatID     api.ID
	Content    string
	Usage      Usage
	UsedSearch bool
}

// Send submits a message to the active chat, creating one first when there
// is none, and streams the reply into sink. Failures are reported to sink as a
// single error entry and returned.
func (s *Service) Send(ctx context.Context, req SendRequest, sink Sink) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && req.Image == nil {
		return Reply{}, ErrEmptyMessage
	}
	if message == "" {
		message = DefaultImageMessage
	}
	if err := s.acquire(); err != nil {
		return Reply{}, err
	}
	defer s.busy.Store(false)

	sink.Lock()
	defer sink.Unlock()

	reply, err := s.send(ctx, message, req, sink)
	if err != nil {
		slog.Error("Chat request failed", "chat_id", reply.ChatID, "error", err)
		sink.AppendError(ErrorText(err, fallbackFor(err)))
	}
	return reply, err
}

func (s *Service) send(ctx context.Context, message string, req SendRequest, sink Sink) (Reply, error) {
	chatID := s.store.ActiveID()
	isNew := chatID == ""
	if isNew {
		created, err := s.createChat(ctx, Title(message), sink)
		if err != nil {
			return Reply{}, err
		}
		chatID = created.ID
	} else if s.untitled(chatID) {
		// Opened with NewChat and not used yet.
		isNew = true
		s.setTitle(ctx, chatID, Title(message))
		sink.SessionsChanged()
	}
	reply := Reply{ChatID: chatID}

	sink.AppendUser(message)

	var imageData string
	if req.Image != nil {
		data, err := s.client.UploadImage(ctx, req.Image.Filename, bytes.NewReader(req.Image.Data))
		if err != nil {
			return reply, &uploadError{err: err}
		}
		imageData = data
	}

	stream, err := s.client.Chat(ctx, api.ChatRequest{
		Message:   message,
		ChatID:    &chatID,
		ModelType: req.ModelType,
		IsNewChat: isNew,
		UseSearch: req.UseSearch,
		APIKey:    req.APIKey,
		APIType:   req.APIType,
		ImageData: imageData,
	})
	if err != nil {
		return reply, err
	}
	defer stream.Close()

	if err := s.consume(stream, &reply, sink); err != nil {
		return reply, err
	}

	sink.ClearInput()
	sink.HideImagePreview()
	if err := s.store.Refresh(ctx); err != nil {
		slog.Warn("Could not refresh chats after reply", "error", err)
	}
	sink.SessionsChanged()
	return reply, nil
}

// consume applies events in arrival order until the stream ends or an error
// event arrives. Nothing after an error event is applied.
func (s *Service) consume(stream *api.ChatStream, reply *Reply, sink Sink) error {
	var (
		buf     strings.Builder
		started bool
	)
	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if ev.Error != nil {
			return &StreamError{Message: *ev.Error}
		}

		if ev.UsedSearch != nil && *ev.UsedSearch {
			reply.UsedSearch = true
		}
		if ev.ChatID != nil && *ev.ChatID != "" && *ev.ChatID != reply.ChatID {
			reply.ChatID = *ev.ChatID
			s.store.SetActive(reply.ChatID)
			sink.SetActiveChat(reply.ChatID)
		}
		if ev.TokenCount != nil {
			reply.Usage = Usage{Tokens: *ev.TokenCount, MaxTokens: reply.Usage.MaxTokens}
			if ev.MaxTokens != nil {
				reply.Usage.MaxTokens = *ev.MaxTokens
			}
			sink.SetUsage(reply.Usage)
		}
		if ev.Response != nil {
			if !started {
				sink.BeginAssistant(reply.UsedSearch)
				started = true
			}
			buf.WriteString(*ev.Response)
			sink.UpdateAssistant(s.md.Render(buf.String()))
		}
	}
	reply.Content = buf.String()
	return nil
}

// createChat makes a new session active and names it. A failed title update
// is logged and the session keeps the backend's default title.
func (s *Service) createChat(ctx context.Context, title string, sink Sink) (api.ChatSummary, error) {
	created, err := s.client.CreateChat(ctx)
	if err != nil {
		return api.ChatSummary{}, &createError{err: err}
	}
	if created.Title == "" {
		created.Title = session.DefaultTitle
	}
	s.store.Add(created)
	s.store.SetActive(created.ID)
	sink.SetActiveChat(created.ID)

	if title != "" && s.setTitle(ctx, created.ID, title) {
		created.Title = title
	}
	sink.SessionsChanged()
	return created, nil
}

// untitled reports whether a cached chat still has the backend's default
// title.
func (s *Service) untitled(id api.ID) bool {
	c, ok := s.store.Get(id)
	return ok && (c.Title == "" || c.Title == session.DefaultTitle)
}

// setTitle names a chat on the backend and in the cache. A failure is logged
// and the chat keeps its current title.
func (s *Service) setTitle(ctx context.Context, id api.ID, title string) bool {
	if title == "" {
		return false
	}
	if err := s.client.SetChatTitle(ctx, id, title); err != nil {
		slog.Warn("Could not set chat title", "chat_id", id, "error", err)
		return false
	}
	s.store.SetTitle(id, title)
	return true
}

// NewChat starts an empty session right away and makes it active.
func (s *Service) NewChat(ctx context.Context, sink Sink) (api.ChatSummary, error) {
	if err := s.acquire(); err != nil {
		return api.ChatSummary{}, err
	}
	defer s.busy.Store(false)

	sink.Lock()
	defer sink.Unlock()

	sink.ClearConversation()
	sink.SetUsage(Usage{})
	created, err := s.createChat(ctx, "", sink)
	if err != nil {
		sink.AppendError(ErrorText(err, createFailed))
		return api.ChatSummary{}, err
	}
	return created, nil
}

type createError struct{ err error }

func (e *createError) Error() string { return fmt.Sprintf("failed to create chat: %v", e.err) }
func (e *createError) Unwrap() error { return e.err }

type uploadError struct{ err error }

func (e *uploadError) Error() string { return fmt.Sprintf("failed to upload image: %v", e.err) }
func (e *uploadError) Unwrap() error { return e.err }

func fallbackFor(err error) string {
	var (
		ce *createError
		ue *uploadError
	)
	switch {
	case errors.As(err, &ce):
		return createFailed
	case errors.As(err, &ue):
		return uploadFailed
	default:
		return sendFailed
	}
}
