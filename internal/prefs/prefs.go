// Package prefs persists the handful of scalar client preferences that must
// survive restarts: the model API credential and its type, the theme, the
// search-mode toggle and the selected model.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/chasedut/chatter/internal/db"
)

const (
	KeyAPIKey    = "api_key"
	KeyAPIType   = "api_type"
	KeyTheme     = "theme"
	KeyUseSearch = "use_search"
	KeyModelType = "model_type"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	APITypeOpenAI = "openai"
	APITypeGemini = "gemini"
)

var (
	Keys       = []string{KeyAPIKey, KeyAPIType, KeyTheme, KeyUseSearch, KeyModelType}
	APITypes   = []string{APITypeOpenAI, APITypeGemini}
	Themes     = []string{ThemeDark, ThemeLight}
	ModelTypes = []string{"gemma", "phi", "openai", "gemini"}
)

// Preferences is a snapshot of every stored preference with defaults applied.
type Preferences struct {
	APIKey    string
	APIType   string
	Theme     string
	UseSearch bool
	ModelType string
}

// APIKeyInstructions is the prompt shown when asking for a credential of the
// current type.
func (p Preferences) APIKeyInstructions() string {
	if p.APIType == APITypeGemini {
		return "Enter your Google Gemini API key"
	}
	return "Enter your OpenAI API key (starts with 'sk-')"
}

type Service struct {
	q            *db.Queries
	defaultModel string
}

func NewService(q *db.Queries, defaultModel string) *Service {
	if defaultModel == "" {
		defaultModel = ModelTypes[0]
	}
	return &Service{q: q, defaultModel: defaultModel}
}

func (s *Service) Load(ctx context.Context) (Preferences, error) {
	p := Preferences{
		APIType:   APITypeOpenAI,
		Theme:     ThemeDark,
		ModelType: s.defaultModel,
	}
	stored, err := s.q.ListPreferences(ctx)
	if err != nil {
		return p, fmt.Errorf("failed to load preferences: %w", err)
	}
	for _, item := range stored {
		switch item.Key {
		case KeyAPIKey:
			p.APIKey = item.Value
		case KeyAPIType:
			if slices.Contains(APITypes, item.Value) {
				p.APIType = item.Value
			}
		case KeyTheme:
			if slices.Contains(Themes, item.Value) {
				p.Theme = item.Value
			}
		case KeyUseSearch:
			p.UseSearch, _ = strconv.ParseBool(item.Value)
		case KeyModelType:
			if slices.Contains(ModelTypes, item.Value) {
				p.ModelType = item.Value
			}
		}
	}
	return p, nil
}

// Get returns the raw stored value and whether it was present.
func (s *Service) Get(ctx context.Context, key string) (string, bool, error) {
	p, err := s.q.GetPreference(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return p.Value, true, nil
}

// Set validates and stores a single preference. An empty API key removes the
// stored credential.
func (s *Service) Set(ctx context.Context, key, value string) error {
	switch key {
	case KeyAPIKey:
		return s.SetAPIKey(ctx, value)
	case KeyAPIType:
		return s.SetAPIType(ctx, value)
	case KeyTheme:
		return s.SetTheme(ctx, value)
	case KeyUseSearch:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: expected true or false", value, key)
		}
		return s.SetUseSearch(ctx, on)
	case KeyModelType:
		return s.SetModelType(ctx, value)
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
}

func (s *Service) SetAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return s.q.DeletePreference(ctx, KeyAPIKey)
	}
	return s.q.SetPreference(ctx, KeyAPIKey, apiKey)
}

// SetAPIType stores the credential type. Switching to a different type drops
// the stored key, since a key for one provider is useless for the other.
func (s *Service) SetAPIType(ctx context.Context, apiType string) error {
	if !slices.Contains(APITypes, apiType) {
		return fmt.Errorf("invalid api type %q: expected one of %v", apiType, APITypes)
	}
	current, ok, err := s.Get(ctx, KeyAPIType)
	if err != nil {
		return err
	}
	if !ok {
		current = APITypeOpenAI
	}
	if err := s.q.SetPreference(ctx, KeyAPIType, apiType); err != nil {
		return err
	}
	if current != apiType {
		return s.q.DeletePreference(ctx, KeyAPIKey)
	}
	return nil
}

func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if !slices.Contains(Themes, theme) {
		return fmt.Errorf("invalid theme %q: expected one of %v", theme, Themes)
	}
	return s.q.SetPreference(ctx, KeyTheme, theme)
}

func (s *Service) SetUseSearch(ctx context.Context, on bool) error {
	return s.q.SetPreference(ctx, KeyUseSearch, strconv.FormatBool(on))
}

func (s *Service) SetModelType(ctx context.Context, model string) error {
	if !slices.Contains(ModelTypes, model) {
		return fmt.Errorf("invalid model type %q: expected one of %v", model, ModelTypes)
	}
	return s.q.SetPreference(ctx, KeyModelType, model)
}
