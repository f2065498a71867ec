package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ID is an opaque chat identifier. Backends send it either as a JSON string or
// a number; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chat id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// ChatSummary is one entry of the session list.
type ChatSummary struct {
	ID           ID        `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count,omitempty"`
}

func (c *ChatSummary) UnmarshalJSON(data []byte) error {
	type alias ChatSummary
	var raw struct {
		alias
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ChatSummary(raw.alias)
	c.CreatedAt = decodeCreatedAt(c.ID, raw.CreatedAt)
	return nil
}

// decodeCreatedAt reads a creation time sent as a timestamp string or as
// epoch seconds. Anything unreadable becomes the zero time so one odd entry
// does not fail the whole session list.
func decodeCreatedAt(id ID, data json.RawMessage) time.Time {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return time.Time{}
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			if s == "" {
				return time.Time{}
			}
			if t, err := ParseTimestamp(s); err == nil {
				return t
			}
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			if f, err := n.Float64(); err == nil {
				sec := int64(f)
				return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC()
			}
		}
	}
	slog.Warn("Ignoring unreadable chat creation time", "chat_id", id, "created_at", string(data))
	return time.Time{}
}

// ChatGroups is the session list as the backend delivers it: summaries keyed
// by a bucket name the client does not interpret.
type ChatGroups map[string][]ChatSummary

type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatHistory struct {
	Messages []Message `json:"messages"`
}

// ChatRequest is the body of POST /api/chat. ChatID marshals as null when
// no session exists yet.
type ChatRequest struct {
	Message   string `json:"message"`
	ChatID    *ID    `json:"chat_id"`
	ModelType string `json:"model_type"`
	IsNewChat bool   `json:"is_new_chat"`
	UseSearch bool   `json:"use_search"`
	APIKey    string `json:"api_key,omitempty"`
	APIType   string `json:"api_type,omitempty"`
	ImageData string `json:"image_data,omitempty"`
}

// StreamEvent is a single line of a streamed chat response. Every field is
// optional.
type StreamEvent struct {
	Response   *string `json:"response,omitempty"`
	Error      *string `json:"error,omitempty"`
	TokenCount *int64  `json:"token_count,omitempty"`
	MaxTokens  *int64  `json:"max_tokens,omitempty"`
	ChatID     *ID     `json:"chat_id,omitempty"`
	UsedSearch *bool   `json:"used_search,omitempty"`
}

type SearchResult struct {
	SourceTitle string `json:"source_title"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

type uploadResponse struct {
	ImageData string `json:"image_data"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	time.RFC1123,
	time.RFC1123Z,
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339 as well as the zone-less ISO 8601 form many
// Python backends emit; zone-less values are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
