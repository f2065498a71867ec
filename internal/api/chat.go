package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/chasedut/chatter/internal/stream"
)

const defaultChatError = "Failed to send message"

// ChatStream yields the events of one chat response in arrival order.
type ChatStream struct {
	body    io.ReadCloser
	dec     *stream.Decoder[StreamEvent]
	pending []StreamEvent
}

// Next returns the next event, io.EOF when the response is complete, or a
// *TransportError if the connection fails mid-stream.
func (s *ChatStream) Next() (StreamEvent, error) {
	if s.dec == nil {
		if len(s.pending) == 0 {
			return StreamEvent{}, io.EOF
		}
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}
	ev, err := s.dec.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return StreamEvent{}, &TransportError{Op: "read chat stream", Err: err}
	}
	return ev, err
}

func (s *ChatStream) Close() error {
	if s.body == nil {
		return nil
	}
	return s.body.Close()
}

// Chat submits a message. On success the caller owns the returned stream and
// must close it. A non-success status is returned as a *StatusError.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (*ChatStream, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/chat", in)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson, application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "send message", Err: err}
	}
	slog.Debug("Chat response started",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"request_id", req.Header.Get(requestIDHeader),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError(resp.StatusCode, body, defaultChatError)
	}

	if isSingleJSON(resp.Header.Get("Content-Type")) {
		defer resp.Body.Close()
		return readSingleResponse(resp.Body)
	}
	return &ChatStream{
		body: resp.Body,
		dec:  stream.NewDecoder[StreamEvent](resp.Body),
	}, nil
}

func isSingleJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// readSingleResponse handles the non-streaming variant, where the body is one
// JSON object. Some servers label NDJSON as application/json, so a body that
// is not a single object is decoded line by line instead.
func readSingleResponse(r io.Reader) (*ChatStream, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &TransportError{Op: "read chat response", Err: err}
	}
	var ev StreamEvent
	if err := json.Unmarshal(body, &ev); err == nil {
		return &ChatStream{pending: []StreamEvent{ev}}, nil
	}

	dec := stream.NewDecoder[StreamEvent](bytes.NewReader(body))
	var events []StreamEvent
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode chat response: %w", err)
		}
		events = append(events, ev)
	}
	return &ChatStream{pending: events}, nil
}
