// Package session keeps the local view of the user's chat sessions: the list
// fetched from the backend and which one is active.
package session

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/chasedut/chatter/internal/api"
)

// DefaultTitle is what the backend names a chat before it is titled.
const DefaultTitle = "New Chat"

// Backend is the part of the API the store needs.
type Backend interface {
	ListChats(ctx context.Context) (api.ChatGroups, error)
	GetChat(ctx context.Context, id api.ID) (api.ChatHistory, error)
	DeleteChat(ctx context.Context, id api.ID) error
	ClearChats(ctx context.Context) error
}

type Store struct {
	backend Backend
	loc     *time.Location

	mu     sync.RWMutex
	chats  []api.ChatSummary
	active api.ID
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend, loc: time.Local}
}

// Refresh replaces the cached list with the backend's, flattened and sorted
// newest first. On error the cached list is left untouched.
func (s *Store) Refresh(ctx context.Context) error {
	groups, err := s.backend.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh chats: %w", err)
	}
	chats := Flatten(groups)

	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()
	slog.Debug("Refreshed chat list", "count", len(chats), "groups", len(groups))
	return nil
}

// Flatten merges the backend's buckets into one list sorted by creation time,
// newest first. A chat listed in several buckets appears once.
func Flatten(groups api.ChatGroups) []api.ChatSummary {
	seen := make(map[api.ID]bool)
	var chats []api.ChatSummary
	for _, key := range slices.Sorted(maps.Keys(groups)) {
		for _, c := range groups[key] {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			chats = append(chats, c)
		}
	}
	slices.SortStableFunc(chats, func(a, b api.ChatSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return chats
}

// Chats returns a copy of the cached list.
func (s *Store) Chats() []api.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.chats)
}

// Filtered returns the cached chats matching query.
func (s *Store) Filtered(query string) []api.ChatSummary {
	return Filter(s.Chats(), query, s.loc)
}

// Groups buckets the cached chats matching query relative to now.
func (s *Store) Groups(query string, now time.Time) []Group {
	return GroupChats(s.Filtered(query), now.In(s.loc))
}

func (s *Store) Get(id api.ID) (api.ChatSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.chats, func(c api.ChatSummary) bool { return c.ID == id })
	if i < 0 {
		return api.ChatSummary{}, false
	}
	return s.chats[i], true
}

// Add puts a freshly created chat at the top of the list until the next
// refresh replaces it.
func (s *Store) Add(c api.ChatSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = slices.DeleteFunc(s.chats, func(x api.ChatSummary) bool { return x.ID == c.ID })
	s.chats = slices.Insert(s.chats, 0, c)
}

// SetTitle updates a cached title without a round trip.
func (s *Store) SetTitle(id api.ID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == id {
			s.chats[i].Title = title
		}
	}
}

// ActiveID returns the active chat id, empty when there is none.
func (s *Store) ActiveID() api.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Store) SetActive(id api.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
}

// Select loads a chat's history and makes it active. The active id only
// changes when the history loaded.
func (s *Store) Select(ctx context.Context, id api.ID) (api.ChatHistory, error) {
	history, err := s.backend.GetChat(ctx, id)
	if err != nil {
		return api.ChatHistory{}, fmt.Errorf("failed to load chat: %w", err)
	}
	s.SetActive(id)
	return history, nil
}

// Delete removes a chat on the backend and locally. Deleting the active chat
// clears the active id.
func (s *Store) Delete(ctx context.Context, id api.ID) error {
	if err := s.backend.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = slices.DeleteFunc(s.chats, func(c api.ChatSummary) bool { return c.ID == id })
	if s.active == id {
		s.active = ""
	}
	return nil
}

// Clear deletes every chat and forgets the active one.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.ClearChats(ctx); err != nil {
		return fmt.Errorf("failed to clear chats: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = nil
	s.active = ""
	return nil
}
