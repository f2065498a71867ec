package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/chasedut/chatter/internal/api"
)

const noResults = "No results found."

// Search runs a one-shot query and renders the ranked results as a single
// assistant entry.
func (s *Service) Search(ctx context.Context, query string, sink Sink) ([]api.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.busy.Store(false)

	sink.Lock()
	defer sink.Unlock()

	sink.AppendUser("Searching for: " + query)
	results, err := s.client.Search(ctx, query)
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		sink.AppendError(ErrorText(err, searchFailed))
		return nil, err
	}

	sink.BeginAssistant(true)
	sink.UpdateAssistant(s.md.Render(FormatResults(results)))
	sink.ClearInput()
	return results, nil
}

// FormatResults lays results out as a numbered Markdown list of title,
// snippet and source URL.
func FormatResults(results []api.SearchResult) string {
	if len(results) == 0 {
		return noResults
	}
	conv := md.NewConverter("", true, nil)
	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf("%d. **%s**\n%s\n%s",
			i+1, strings.TrimSpace(r.SourceTitle), snippetMarkdown(conv, r.Snippet), strings.TrimSpace(r.URL)))
	}
	return strings.Join(entries, "\n\n")
}

// snippetMarkdown converts HTML highlighting in search snippets to Markdown.
// Plain text is returned as is.
func snippetMarkdown(conv *md.Converter, snippet string) string {
	snippet = strings.TrimSpace(snippet)
	if !strings.Contains(snippet, "<") || !strings.Contains(snippet, ">") {
		return snippet
	}
	out, err := conv.ConvertString(snippet)
	if err != nil {
		slog.Debug("Could not convert snippet HTML", "error", err)
		return snippet
	}
	return strings.TrimSpace(out)
}
