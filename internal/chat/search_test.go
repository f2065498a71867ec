package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasedut/chatter/internal/api"
)

func TestSearch(t *testing.T) {
	backend := newFakeBackend(t)
	backend.search = `{"results": [
		{"source_title": "Go", "snippet": "The <b>Go</b> language", "url": "https://go.dev"},
		{"source_title": "Tour", "snippet": "Learn by example", "url": "https://go.dev/tour"}
	]}`
	svc, _ := newTestService(t, backend)
	sink := &recordingSink{}

	results, err := svc.Search(t.Context(), " golang ", sink)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	require.Len(t, sink.entries, 2)
	assert.Equal(t, entry{role: "user", content: "Searching for: golang"}, sink.entries[0])
	assert.True(t, sink.entries[1].search)
	assert.Equal(t,
		"1. **Go**\nThe **Go** language\nhttps://go.dev\n\n2. **Tour**\nLearn by example\nhttps://go.dev/tour",
		sink.entries[1].content)
	assert.Equal(t, 1, sink.unlocks)
}

func TestSearchError(t *testing.T) {
	backend := newFakeBackend(t)
	backend.search = `{"error": "Search service unavailable"}`
	svc, _ := newTestService(t, backend)
	sink := &recordingSink{}

	_, err := svc.Search(t.Context(), "golang", sink)
	require.Error(t, err)
	require.Len(t, sink.entries, 2)
	assert.Equal(t, entry{role: "error", content: "Error: Search service unavailable"}, sink.entries[1])
	assert.False(t, sink.locked)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t, newFakeBackend(t))
	_, err := svc.Search(t.Context(), "  ", &recordingSink{})
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFormatResultsEmpty(t *testing.T) {
	assert.Equal(t, noResults, FormatResults(nil))
	assert.Equal(t, "1. **T**\nplain\nu", FormatResults([]api.SearchResult{{SourceTitle: "T", Snippet: "plain", URL: "u"}}))
}
