package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/tui/util"
)

func TestFormatUsage(t *testing.T) {
	assert.Empty(t, FormatUsage(chat.Usage{}))
	assert.Equal(t, "250/1000 tokens (25%)", FormatUsage(chat.Usage{Tokens: 250, MaxTokens: 1000}))
	assert.Equal(t, "7 tokens", FormatUsage(chat.Usage{Tokens: 7}))
}

func TestInfoExpires(t *testing.T) {
	m := New(nil)
	_, cmd := m.Update(util.InfoMsg{Msg: "saved", TTL: time.Millisecond})
	require.NotNil(t, cmd)
	assert.Equal(t, "saved", m.Info())

	m.Update(util.InfoMsg{Msg: "newer"})
	m.Update(cmd())
	assert.Equal(t, "newer", m.Info(), "a stale clear does not hide a newer message")

	m.Update(util.ClearStatusMsg{})
	assert.Empty(t, m.Info())
}
