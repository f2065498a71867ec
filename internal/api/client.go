package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 60 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Client talks to the chat backend. One-shot calls use a client with a
// timeout; streamed chat responses use a client without one, since a reply
// may legitimately take minutes to finish.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	streamClient *http.Client
}

type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the timeout for non-streaming requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces both underlying clients. Its Timeout is honored for
// one-shot calls only.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		stream := *hc
		stream.Timeout = 0
		c.streamClient = &stream
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req on hc and decodes a successful JSON body into out. Non-success
// statuses become a *StatusError carrying the server's error text, or
// defaultErr when there is none.
func (c *Client) do(hc *http.Client, req *http.Request, op, defaultErr string, out any) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	slog.Debug("API request finished",
		"op", op,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(requestIDHeader),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body, defaultErr)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func statusError(code int, body []byte, defaultErr string) *StatusError {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &StatusError{StatusCode: code, Message: payload.Error}
	}
	return &StatusError{StatusCode: code, Message: defaultErr}
}

func chatPath(id ID, suffix string) string {
	return "/api/chats/" + url.PathEscape(string(id)) + suffix
}

// CreateChat asks the backend for a new, empty session.
func (c *Client) CreateChat(ctx context.Context) (ChatSummary, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/chats", nil)
	if err != nil {
		return ChatSummary{}, err
	}
	var chat ChatSummary
	if err := c.do(c.httpClient, req, "create chat", "Failed to create new chat", &chat); err != nil {
		return ChatSummary{}, err
	}
	if chat.ID == "" {
		return ChatSummary{}, fmt.Errorf("create chat: response has no id")
	}
	return chat, nil
}

func (c *Client) SetChatTitle(ctx context.Context, id ID, title string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPut, chatPath(id, "/title"), titleRequest{Title: title})
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, "set chat title", "Failed to update chat title", nil)
}

// ListChats returns the session list grouped the way the backend chose.
func (c *Client) ListChats(ctx context.Context) (ChatGroups, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/chats", nil)
	if err != nil {
		return nil, err
	}
	var groups ChatGroups
	if err := c.do(c.httpClient, req, "list chats", "Failed to load chats", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) GetChat(ctx context.Context, id ID) (ChatHistory, error) {
	req, err := c.newRequest(ctx, http.MethodGet, chatPath(id, ""), nil)
	if err != nil {
		return ChatHistory{}, err
	}
	var history ChatHistory
	if err := c.do(c.httpClient, req, "get chat", "Failed to load chat", &history); err != nil {
		return ChatHistory{}, err
	}
	return history, nil
}

func (c *Client) DeleteChat(ctx context.Context, id ID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, chatPath(id, ""), nil)
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, "delete chat", "Failed to delete chat", nil)
}

// ClearChats deletes every session of the current user.
func (c *Client) ClearChats(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/chats", nil)
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, "clear chats", "Failed to clear chat history", nil)
}

// Search runs a one-shot search. An error field in a successful payload is
// reported as a *StatusError.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/search", searchRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := c.do(c.httpClient, req, "search", "Search failed", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &StatusError{StatusCode: http.StatusOK, Message: resp.Error}
	}
	return resp.Results, nil
}
