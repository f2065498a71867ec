package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/config"
	"github.com/chasedut/chatter/internal/db"
	"github.com/chasedut/chatter/internal/log"
	"github.com/chasedut/chatter/internal/markdown"
	"github.com/chasedut/chatter/internal/prefs"
	"github.com/chasedut/chatter/internal/session"
)

type App struct {
	Client   *api.Client
	Sessions *session.Store
	Chat     *chat.Service
	Prefs    *prefs.Service
	Markdown *markdown.Renderer

	config *config.Config

	prefsMu     sync.RWMutex
	preferences prefs.Preferences

	events         chan tea.Msg
	publishTimeout time.Duration
	tuiWG          *sync.WaitGroup

	// global context and cleanup functions
	globalCtx    context.Context
	cleanupFuncs []func()
}

// New initializes a new application instance.
func New(ctx context.Context, conn *sql.DB, cfg *config.Config) (*App, error) {
	p := prefs.NewService(db.New(conn), cfg.Options.DefaultModel)
	preferences, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := markdown.New(glamourStyle(preferences.Theme), cfg.Options.WordWrap)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	opts := []api.Option{api.WithTimeout(cfg.RequestTimeout())}
	if cfg.Server.Token != "" {
		opts = append(opts, api.WithToken(cfg.Server.Token))
	}
	client := api.NewClient(cfg.Server.URL, opts...)
	store := session.NewStore(client)

	app := &App{
		Client:   client,
		Sessions: store,
		Chat:     chat.NewService(client, store, renderer),
		Prefs:    p,
		Markdown: renderer,

		config:      cfg,
		preferences: preferences,

		globalCtx:      ctx,
		events:         make(chan tea.Msg, 100),
		publishTimeout: 2 * time.Second,
		tuiWG:          &sync.WaitGroup{},
	}
	app.cleanupFuncs = append(app.cleanupFuncs, func() {
		if err := conn.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	})
	slog.Info("App initialized", "server", client.BaseURL(), "model", preferences.ModelType)
	return app, nil
}

func glamourStyle(theme string) string {
	if theme == prefs.ThemeLight {
		return "light"
	}
	return "dark"
}

// Config returns the application configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Context is the context operations started from the TUI run under.
func (app *App) Context() context.Context {
	return app.globalCtx
}

// Preferences returns the last loaded preferences.
func (app *App) Preferences() prefs.Preferences {
	app.prefsMu.RLock()
	defer app.prefsMu.RUnlock()
	return app.preferences
}

// UpdatePreference stores one preference and reloads the snapshot.
func (app *App) UpdatePreference(ctx context.Context, key, value string) (prefs.Preferences, error) {
	if err := app.Prefs.Set(ctx, key, value); err != nil {
		return app.Preferences(), err
	}
	p, err := app.Prefs.Load(ctx)
	if err != nil {
		return app.Preferences(), err
	}
	app.prefsMu.Lock()
	app.preferences = p
	app.prefsMu.Unlock()

	if key == prefs.KeyTheme {
		if err := app.Markdown.SetStyle(glamourStyle(p.Theme)); err != nil {
			slog.Warn("Could not switch markdown style", "theme", p.Theme, "error", err)
		}
	}
	return p, nil
}

// SendRequest builds a chat request for message from the current preferences.
func (app *App) SendRequest(message string) chat.SendRequest {
	p := app.Preferences()
	return chat.SendRequest{
		Message:   message,
		ModelType: p.ModelType,
		UseSearch: p.UseSearch,
		APIKey:    p.APIKey,
		APIType:   p.APIType,
	}
}

// Publish hands msg to the TUI. It gives up after a while when nothing is
// consuming events.
func (app *App) Publish(msg tea.Msg) {
	select {
	case app.events <- msg:
	case <-time.After(app.publishTimeout):
		slog.Warn("message dropped due to slow consumer", "type", fmt.Sprintf("%T", msg))
	case <-app.globalCtx.Done():
	}
}

// Deliver hands msg to the TUI and waits for as long as it takes. Use it for
// state the TUI must not miss, such as the input lock.
func (app *App) Deliver(msg tea.Msg) {
	select {
	case app.events <- msg:
	case <-app.globalCtx.Done():
	}
}

// Subscribe sends events to the TUI as tea.Msgs.
func (app *App) Subscribe(program *tea.Program) {
	defer log.RecoverPanic("app.Subscribe", func() {
		slog.Info("TUI subscription panic: attempting graceful shutdown")
		program.Quit()
	})

	app.tuiWG.Add(1)
	tuiCtx, tuiCancel := context.WithCancel(app.globalCtx)
	app.cleanupFuncs = append(app.cleanupFuncs, func() {
		slog.Debug("Cancelling TUI message handler")
		tuiCancel()
		app.tuiWG.Wait()
	})
	defer app.tuiWG.Done()

	for {
		select {
		case <-tuiCtx.Done():
			slog.Debug("TUI message handler shutting down")
			return
		case msg, ok := <-app.events:
			if !ok {
				slog.Debug("TUI message channel closed")
				return
			}
			program.Send(msg)
		}
	}
}

// Shutdown performs a graceful shutdown of the application. Cleanups run in
// reverse registration order, so the database closes last.
func (app *App) Shutdown() {
	for _, cleanup := range slices.Backward(app.cleanupFuncs) {
		if cleanup != nil {
			cleanup()
		}
	}
	app.cleanupFuncs = nil
}
