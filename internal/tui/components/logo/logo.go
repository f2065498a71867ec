// Package logo renders the chatter wordmark shown on an empty conversation.
package logo

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/common-nighthawk/go-figure"

	"github.com/chasedut/chatter/internal/tui/styles"
)

const (
	word = "chatter"
	font = "larry3d"
	// small is used below this width; larry3d needs about 60 columns.
	smallFont  = "small"
	minFigureW = 62
)

// Render draws the wordmark with a tagline, centered in width x height.
func Render(version string, width, height int) string {
	t := styles.CurrentTheme()

	f := font
	if width < minFigureW {
		f = smallFont
	}
	art := strings.TrimRight(figure.NewFigure(word, f, true).String(), "\n ")

	lines := strings.Split(art, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	art = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(strings.Join(lines, "\n"))

	meta := t.S().Muted.Render("Ask anything. ") + t.S().Subtle.Render(version)
	content := lipgloss.JoinVertical(lipgloss.Center, art, "", meta)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
