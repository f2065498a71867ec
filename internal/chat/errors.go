package chat

import (
	"errors"

	"github.com/chasedut/chatter/internal/api"
)

var (
	ErrBusy         = errors.New("another request is in progress")
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyQuery   = errors.New("search query is empty")
)

// StreamError is an error event received in the middle of a response.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// ErrorText formats err as the conversation entry shown to the user. Server
// supplied messages are shown verbatim, anything else gets fallback.
func ErrorText(err error, fallback string) string {
	var (
		streamErr *StreamError
		statusErr *api.StatusError
	)
	switch {
	case errors.As(err, &streamErr):
		return "Error: " + streamErr.Message
	case errors.As(err, &statusErr) && statusErr.Message != "":
		return "Error: " + statusErr.Message
	default:
		return "Error: " + fallback
	}
}
