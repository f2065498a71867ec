package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasedut/chatter/internal/api"
)

func TestBucketFor(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	now := time.Date(2025, 3, 15, 0, 5, 0, 0, loc)

	tests := []struct {
		name    string
		created time.Time
		want    Bucket
	}{
		{"same day", now.Add(-time.Minute), Today},
		{"future", now.Add(2 * time.Hour), Today},
		{"minutes before midnight", time.Date(2025, 3, 14, 23, 58, 0, 0, loc), Yesterday},
		{"two days", time.Date(2025, 3, 13, 12, 0, 0, 0, loc), Last7Days},
		{"seven days", time.Date(2025, 3, 8, 1, 0, 0, 0, loc), Last7Days},
		{"eight days", time.Date(2025, 3, 7, 23, 0, 0, 0, loc), Last30Days},
		{"thirty days", time.Date(2025, 2, 13, 9, 0, 0, 0, loc), Last30Days},
		{"thirty one days", time.Date(2025, 2, 12, 9, 0, 0, 0, loc), Older},
		{"utc timestamp on local yesterday", time.Date(2025, 3, 15, 4, 0, 0, 0, time.UTC), Yesterday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.created, now))
		})
	}
}

func TestGroupChats(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	chats := []api.ChatSummary{
		{ID: "a", Title: "a", CreatedAt: now.Add(-time.Hour)},
		{ID: "b", Title: "b", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "c", Title: "c", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "d", Title: "d", CreatedAt: now.AddDate(-1, 0, 0)},
	}

	groups := GroupChats(chats, now)
	require.Len(t, groups, 3)
	assert.Equal(t, Today, groups[0].Bucket)
	assert.Equal(t, []api.ID{"a", "c"}, ids(groups[0].Chats))
	assert.Equal(t, Last7Days, groups[1].Bucket)
	assert.Equal(t, Older, groups[2].Bucket)
}

func TestGroupChatsEmpty(t *testing.T) {
	assert.Empty(t, GroupChats(nil, time.Now()))
}

func TestFilter(t *testing.T) {
	loc := time.UTC
	chats := []api.ChatSummary{
		{ID: "1", Title: "Planning the Trip", CreatedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, loc)},
		{ID: "2", Title: "Groceries", CreatedAt: time.Date(2025, 1, 2, 10, 0, 0, 0, loc)},
	}

	t.Run("title case insensitive", func(t *testing.T) {
		assert.Equal(t, []api.ID{"1"}, ids(Filter(chats, "trip", loc)))
	})
	t.Run("date only", func(t *testing.T) {
		assert.Equal(t, []api.ID{"2"}, ids(Filter(chats, "1/2/2025", loc)))
	})
	t.Run("empty query", func(t *testing.T) {
		assert.Len(t, Filter(chats, "  ", loc), 2)
	})
	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Filter(chats, "zzz", loc))
	})
}

func ids(chats []api.ChatSummary) []api.ID {
	out := make([]api.ID, 0, len(chats))
	for _, c := range chats {
		out = append(out, c.ID)
	}
	return out
}
