package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/imageprep"
	"github.com/chasedut/chatter/internal/markdown"
)

// RunOptions describes a single non-interactive message.
type RunOptions struct {
	Prompt string
	// ChatID continues an existing chat. A new one is created when empty.
	ChatID    api.ID
	Model     string
	UseSearch *bool
	ImagePath string
}

// writerSink streams a reply to w as plain text, writing only what each
// update adds.
type writerSink struct {
	chat.Discard
	w       io.Writer
	printed int
}

func (s *writerSink) BeginAssistant(bool) {
	s.printed = 0
}

func (s *writerSink) UpdateAssistant(rendered string) {
	if len(rendered) < s.printed {
		return
	}
	fmt.Fprint(s.w, rendered[s.printed:])
	s.printed = len(rendered)
}

// RunNonInteractive sends one message and streams the reply to w.
func (app *App) RunNonInteractive(ctx context.Context, opts RunOptions, w io.Writer) (chat.Reply, error) {
	slog.Info("Running in non-interactive mode")

	req := app.SendRequest(opts.Prompt)
	if opts.Model != "" {
		req.ModelType = opts.Model
	}
	if opts.UseSearch != nil {
		req.UseSearch = *opts.UseSearch
	}
	if opts.ImagePath != "" {
		img, err := imageprep.PrepareFile(opts.ImagePath)
		if err != nil {
			return chat.Reply{}, err
		}
		req.Image = img
	}
	if strings.TrimSpace(req.Message) == "" && req.Image == nil {
		return chat.Reply{}, errors.New("no prompt provided")
	}

	app.Sessions.SetActive(opts.ChatID)
	svc := chat.NewService(app.Client, app.Sessions, markdown.Plain{})
	sink := &writerSink{w: w}
	reply, err := svc.Send(ctx, req, sink)
	if err != nil {
		if sink.printed > 0 {
			fmt.Fprintln(w)
		}
		return reply, err
	}
	if sink.printed > 0 {
		fmt.Fprintln(w)
	}
	slog.Info("Non-interactive: run completed", "chat_id", reply.ChatID)
	return reply, nil
}

// RunSearch runs a one-shot search and writes the formatted results to w.
func (app *App) RunSearch(ctx context.Context, query string, w io.Writer, md markdown.Formatter) ([]api.SearchResult, error) {
	if md == nil {
		md = markdown.Plain{}
	}
	svc := chat.NewService(app.Client, app.Sessions, md)
	sink := &writerSink{w: w}
	results, err := svc.Search(ctx, query, sink)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w)
	return results, nil
}

// transcriptSink prints a replayed conversation as labeled blocks.
type transcriptSink struct {
	chat.Discard
	w io.Writer
}

func (s *transcriptSink) AppendUser(text string) {
	fmt.Fprintf(s.w, "You:\n%s\n\n", text)
}

func (s *transcriptSink) BeginAssistant(search bool) {
	if search {
		fmt.Fprintln(s.w, "Assistant (search):")
		return
	}
	fmt.Fprintln(s.w, "Assistant:")
}

func (s *transcriptSink) UpdateAssistant(rendered string) {
	fmt.Fprintf(s.w, "%s\n\n", strings.TrimRight(rendered, "\n"))
}

// ShowChat writes the stored history of chat id to w.
func (app *App) ShowChat(ctx context.Context, id api.ID, w io.Writer, md markdown.Formatter) (api.ChatHistory, error) {
	if md == nil {
		md = markdown.Plain{}
	}
	svc := chat.NewService(app.Client, app.Sessions, md)
	return svc.LoadChat(ctx, id, &transcriptSink{w: w})
}
