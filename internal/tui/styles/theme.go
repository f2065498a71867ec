package styles

import (
	"image/color"
	"sync"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

const (
	DarkTheme  = "dark"
	LightTheme = "light"
)

type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase      color.Color
	FgMuted     color.Color
	FgHalfMuted color.Color
	FgSubtle    color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	White color.Color

	// GlamourStyle is the glamour standard style matching the theme.
	GlamourStyle string

	styles *Styles
}

type Styles struct {
	Base   lipgloss.Style
	Text   lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style
	Title  lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SearchBadge    lipgloss.Style
	ErrorText      lipgloss.Style

	Selected lipgloss.Style
	Active   lipgloss.Style
	Section  lipgloss.Style

	Help help.Styles
}

// S returns the theme's derived styles.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:   base,
		Text:   base,
		Muted:  base.Foreground(t.FgMuted),
		Subtle: base.Foreground(t.FgSubtle),
		Title:  base.Foreground(t.Accent).Bold(true),

		UserLabel:      base.Foreground(t.Secondary).Bold(true),
		AssistantLabel: base.Foreground(t.Primary).Bold(true),
		SearchBadge:    base.Foreground(t.Tertiary).Italic(true),
		ErrorText:      base.Foreground(t.Error),

		Selected: base.Background(t.Primary).Foreground(t.White),
		Active:   base.Foreground(t.Primary).Bold(true),
		Section:  base.Foreground(t.FgHalfMuted).Bold(true),

		Help: help.Styles{
			ShortKey:       base.Foreground(t.FgMuted),
			ShortDesc:      base.Foreground(t.FgSubtle),
			ShortSeparator: base.Foreground(t.Border),
			Ellipsis:       base.Foreground(t.Border),
			FullKey:        base.Foreground(t.FgMuted),
			FullDesc:       base.Foreground(t.FgSubtle),
			FullSeparator:  base.Foreground(t.Border),
		},
	}
}

func NewDarkTheme() *Theme {
	return &Theme{
		Name:   DarkTheme,
		IsDark: true,

		Primary:   charmtone.Charple,
		Secondary: charmtone.Dolly,
		Tertiary:  charmtone.Bok,
		Accent:    charmtone.Zest,

		BgBase:    charmtone.Pepper,
		BgSubtle:  charmtone.Charcoal,
		BgOverlay: charmtone.Iron,

		FgBase:      charmtone.Ash,
		FgMuted:     charmtone.Squid,
		FgHalfMuted: charmtone.Smoke,
		FgSubtle:    charmtone.Oyster,

		Border:      charmtone.Charcoal,
		BorderFocus: charmtone.Charple,

		Success: charmtone.Guac,
		Error:   charmtone.Sriracha,
		Warning: charmtone.Zest,
		Info:    charmtone.Malibu,

		White:        charmtone.Butter,
		GlamourStyle: "dark",
	}
}

func NewLightTheme() *Theme {
	return &Theme{
		Name: LightTheme,

		Primary:   charmtone.Charple,
		Secondary: charmtone.Coral,
		Tertiary:  charmtone.Turtle,
		Accent:    charmtone.Mustard,

		BgBase:    charmtone.Salt,
		BgSubtle:  charmtone.Smoke,
		BgOverlay: charmtone.Ash,

		FgBase:      charmtone.Pepper,
		FgMuted:     charmtone.Charcoal,
		FgHalfMuted: charmtone.Iron,
		FgSubtle:    charmtone.Squid,

		Border:      charmtone.Smoke,
		BorderFocus: charmtone.Charple,

		Success: charmtone.Guac,
		Error:   charmtone.Cherry,
		Warning: charmtone.Mustard,
		Info:    charmtone.Sapphire,

		White:        charmtone.Butter,
		GlamourStyle: "light",
	}
}

var (
	mu      sync.RWMutex
	current = NewDarkTheme()
)

func CurrentTheme() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetTheme switches the current theme by name. Unknown names fall back to
// dark.
func SetTheme(name string) *Theme {
	t := NewDarkTheme()
	if name == LightTheme {
		t = NewLightTheme()
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return t
}
