package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithToken("secret"), WithTimeout(5*time.Second))
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	require.Equal(t, "https://chat.example.com", NewClient("https://chat.example.com//").BaseURL())
}

func TestCreateChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chats", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(requestIDHeader))
		io.WriteString(w, `{"id":"c1","title":"New Chat","created_at":"2026-10-18T09:30:00.123456"}`)
	})

	chat, err := c.CreateChat(context.Background())
	require.NoError(t, err)
	require.Equal(t, ID("c1"), chat.ID)
	require.Equal(t, "New Chat", chat.Title)
	require.Equal(t, time.Date(2026, 10, 18, 9, 30, 0, 123456000, time.UTC), chat.CreatedAt)
}

func TestCreateChatWithoutID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"title":"New Chat"}`)
	})
	_, err := c.CreateChat(context.Background())
	require.Error(t, err)
}

func TestListChatsNumericIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"today": [{"id": 7, "title": "a", "created_at": "2026-10-18T10:00:00+00:00", "message_count": 2}],
			"older": [{"id": "x", "title": "b", "created_at": "2025-01-01T00:00:00Z"}],
			"yesterday": []
		}`)
	})
	groups, err := c.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	require.Equal(t, ID("7"), groups["today"][0].ID)
	require.Equal(t, 2, groups["today"][0].MessageCount)
	require.Equal(t, ID("x"), groups["older"][0].ID)
}

func TestListChatsToleratesOddCreatedAt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"today": [
			{"id": 1, "title": "date only", "created_at": "2026-10-18"},
			{"id": 2, "title": "epoch", "created_at": 1760779800},
			{"id": 3, "title": "garbled", "created_at": "last tuesday"},
			{"id": 4, "title": "object", "created_at": {"seconds": 5}},
			{"id": 5, "title": "missing"}
		]}`)
	})
	groups, err := c.ListChats(context.Background())
	require.NoError(t, err)

	chats := groups["today"]
	require.Len(t, chats, 5)
	require.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), chats[0].CreatedAt)
	require.Equal(t, time.Unix(1760779800, 0).UTC(), chats[1].CreatedAt)
	require.True(t, chats[2].CreatedAt.IsZero())
	require.True(t, chats[3].CreatedAt.IsZero())
	require.True(t, chats[4].CreatedAt.IsZero())
	require.Equal(t, "garbled", chats[2].Title)
}

func TestSetChatTitleEscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/chats/a%2Fb/title", r.URL.EscapedPath())
		var body titleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Hello", body.Title)
		io.WriteString(w, `{"message":"Title updated successfully"}`)
	})
	require.NoError(t, c.SetChatTitle(context.Background(), "a/b", "Hello"))
}

func TestStatusErrorUsesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":"Unauthorized"}`)
	})
	_, err := c.GetChat(context.Background(), "c1")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusForbidden, se.StatusCode)
	require.Equal(t, "Unauthorized", se.Error())
}

func TestStatusErrorDefaultMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	err := c.DeleteChat(context.Background(), "c1")
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "Failed to delete chat")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL)
	_, err := c.ListChats(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "list chats", te.Op)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "golang", body.Query)
		io.WriteString(w, `{"results":[{"source_title":"Go","snippet":"The Go language","url":"https://go.dev"}]}`)
	})
	results, err := c.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, []SearchResult{{SourceTitle: "Go", Snippet: "The Go language", URL: "https://go.dev"}}, results)
}

func TestSearchErrorPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results":[],"error":"search backend offline"}`)
	})
	_, err := c.Search(context.Background(), "x")
	require.EqualError(t, err, "search backend offline")
}

func TestUploadImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload-image", r.URL.Path)
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		require.Equal(t, "cat.png", hdr.Filename)
		require.Equal(t, "PNGDATA", string(data))
		io.WriteString(w, `{"message":"Image uploaded successfully","image_data":"aW1n"}`)
	})
	data, err := c.UploadImage(context.Background(), "cat.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	require.Equal(t, "aW1n", data)
}

func drain(t *testing.T, s *ChatStream) []StreamEvent {
	t.Helper()
	defer s.Close()
	var out []StreamEvent
	for {
		ev, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestChatStreamsNDJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Contains(t, body, "chat_id")
		require.Nil(t, body["chat_id"])
		require.Equal(t, "Hello", body["message"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, line := range []string{`{"response":"Hi","used_search":true}`, `garbage`, `{"response":" there","token_count":5,"max_tokens":100,"chat_id":"c9"}`} {
			io.WriteString(w, line+"\n")
			flusher.Flush()
		}
	})

	s, err := c.Chat(context.Background(), ChatRequest{Message: "Hello", ModelType: "gemma", IsNewChat: true})
	require.NoError(t, err)
	events := drain(t, s)
	require.Len(t, events, 2)
	require.Equal(t, "Hi", *events[0].Response)
	require.True(t, *events[0].UsedSearch)
	require.Equal(t, " there", *events[1].Response)
	require.Equal(t, int64(5), *events[1].TokenCount)
	require.Equal(t, int64(100), *events[1].MaxTokens)
	require.Equal(t, ID("c9"), *events[1].ChatID)
}

func TestChatSingleJSONResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "{\n  \"response\": \"whole reply\"\n}\n")
	})
	chatID := ID("c1")
	s, err := c.Chat(context.Background(), ChatRequest{Message: "x", ChatID: &chatID})
	require.NoError(t, err)
	events := drain(t, s)
	require.Len(t, events, 1)
	require.Equal(t, "whole reply", *events[0].Response)
}

func TestChatJSONLabelledNDJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "{\"response\":\"a\"}\n{\"response\":\"b\"}\n")
	})
	s, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	require.NoError(t, err)
	events := drain(t, s)
	require.Len(t, events, 2)
	require.Equal(t, "b", *events[1].Response)
}

func TestChatNonSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Message cannot be empty"}`)
	})
	_, err := c.Chat(context.Background(), ChatRequest{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "Message cannot be empty", se.Message)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})
	_, err = c.Chat(context.Background(), ChatRequest{})
	require.EqualError(t, err, defaultChatError)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2026-10-18T09:30:00Z",
		"2026-10-18T09:30:00+00:00",
		"2026-10-18T09:30:00",
		"2026-10-18 09:30:00.5",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		require.Equal(t, 2026, ts.Year())
	}
	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}
