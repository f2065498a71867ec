package prefs

import (
	"context"
	"testing"

	"github.com/chasedut/chatter/internal/db"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.Connect(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewService(db.New(conn), "phi")
}

func TestLoadDefaults(t *testing.T) {
	s := newService(t)
	p, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, Preferences{APIType: APITypeOpenAI, Theme: ThemeDark, ModelType: "phi"}, p)
}

func TestSetAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.NoError(t, s.SetAPIKey(ctx, "sk-123"))
	require.NoError(t, s.SetTheme(ctx, ThemeLight))
	require.NoError(t, s.SetUseSearch(ctx, true))
	require.NoError(t, s.Set(ctx, KeyModelType, "gemini"))

	p, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "sk-123", p.APIKey)
	require.Equal(t, ThemeLight, p.Theme)
	require.True(t, p.UseSearch)
	require.Equal(t, "gemini", p.ModelType)
}

func TestChangingAPITypeClearsKey(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.NoError(t, s.SetAPIKey(ctx, "sk-123"))
	require.NoError(t, s.SetAPIType(ctx, APITypeOpenAI))
	p, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "sk-123", p.APIKey, "same type keeps the key")

	require.NoError(t, s.SetAPIType(ctx, APITypeGemini))
	p, err = s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, p.APIKey)
	require.Equal(t, APITypeGemini, p.APIType)
	require.Equal(t, "Enter your Google Gemini API key", p.APIKeyInstructions())
}

func TestSetValidation(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.Error(t, s.Set(ctx, KeyTheme, "solarized"))
	require.Error(t, s.Set(ctx, KeyAPIType, "claude"))
	require.Error(t, s.Set(ctx, KeyUseSearch, "maybe"))
	require.Error(t, s.Set(ctx, KeyModelType, "gpt-9"))
	require.Error(t, s.Set(ctx, "font", "mono"))

	_, ok, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.False(t, ok)
}
