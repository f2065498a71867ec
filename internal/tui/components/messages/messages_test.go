package messages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateAssistantReplacesContent(t *testing.T) {
	m := New()
	m.AppendUser("Hello")
	m.BeginAssistant(false)
	m.UpdateAssistant("Hi")
	m.UpdateAssistant("Hi there")

	assert.Equal(t, []Entry{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there"},
	}, m.Entries())
}

func TestViewShowsNewestLines(t *testing.T) {
	m := New()
	m.SetSize(40, 3)
	for i := range 5 {
		m.AppendError(strings.Repeat("x", i+1))
	}

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "xxxxx")
}

func TestEmptyView(t *testing.T) {
	m := New()
	m.SetSize(10, 2)
	m.Empty = func(w, h int) string { return "splash" }
	assert.Equal(t, "splash", m.View())

	m.AppendUser("hi")
	m.Clear()
	assert.Empty(t, m.Entries())
	assert.Equal(t, "splash", m.View())
}
