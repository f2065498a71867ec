// Package markdown renders Markdown for the terminal.
package markdown

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour/v2"
	"github.com/zeebo/xxh3"
)

const (
	StyleDark  = "dark"
	StyleLight = "light"

	maxCacheEntries = 512
	minWidth        = 20
)

// Formatter turns Markdown source into display text.
type Formatter interface {
	Render(markdown string) string
}

// Renderer is a Formatter backed by glamour. Rendered output is cached by
// content hash so replayed history is not re-rendered on every frame.
type Renderer struct {
	mu    sync.Mutex
	tr    *glamour.TermRenderer
	style string
	width int
	cache map[uint64]string
}

func New(style string, width int) (*Renderer, error) {
	r := &Renderer{}
	if err := r.configure(style, width); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) configure(style string, width int) error {
	if style != StyleLight {
		style = StyleDark
	}
	width = max(width, minWidth)
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	r.tr = tr
	r.style = style
	r.width = width
	r.cache = make(map[uint64]string)
	return nil
}

// Render formats markdown. If glamour fails the source text is returned
// unchanged.
func (r *Renderer) Render(markdown string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := xxh3.HashString(markdown)
	if out, ok := r.cache[key]; ok {
		return out
	}
	out, err := r.tr.Render(markdown)
	if err != nil {
		slog.Warn("Failed to render markdown", "error", err)
		return markdown
	}
	out = strings.Trim(out, "\n")
	if len(r.cache) >= maxCacheEntries {
		clear(r.cache)
	}
	r.cache[key] = out
	return out
}

// SetWidth rebuilds the renderer for a new wrap width.
func (r *Renderer) SetWidth(width int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if max(width, minWidth) == r.width {
		return nil
	}
	return r.configure(r.style, width)
}

// SetStyle switches between the dark and light glamour styles.
func (r *Renderer) SetStyle(style string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if style == r.style {
		return nil
	}
	return r.configure(style, r.width)
}

func (r *Renderer) Style() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// Plain is a Formatter that returns its input untouched. Used for piped
// output where escape sequences would be noise.
type Plain struct{}

func (Plain) Render(markdown string) string {
	return markdown
}
