package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasedut/chatter/internal/api"
)

func TestLoadChatReplaysHistory(t *testing.T) {
	backend := newFakeBackend(t)
	backend.history = `{"messages": [
		{"role": "user", "content": "hi"},
		{"role": "bot", "content": "hello"},
		{"role": "system", "content": "hidden"},
		{"role": "assistant", "content": "**bold**"}
	]}`
	svc, store := newTestService(t, backend)
	sink := &recordingSink{entries: []entry{{role: "user", content: "stale"}}}

	_, err := svc.LoadChat(t.Context(), "3", sink)
	require.NoError(t, err)

	assert.Equal(t, []entry{
		{role: "user", content: "hi"},
		{role: "assistant", content: "hello"},
		{role: "assistant", content: "**bold**"},
	}, sink.entries)
	assert.Equal(t, api.ID("3"), store.ActiveID())
	assert.Equal(t, []api.ID{"3"}, sink.active)
}

func TestLoadChatNotFound(t *testing.T) {
	backend := newFakeBackend(t)
	svc, store := newTestService(t, backend)
	store.SetActive("1")
	sink := &recordingSink{}

	_, err := svc.LoadChat(t.Context(), "3", sink)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, api.ID("1"), store.ActiveID())
	assert.Equal(t, []entry{{role: "error", content: "Error: Chat not found"}}, sink.entries)
}
