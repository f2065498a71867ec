package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/chasedut/chatter/internal/app"
	"github.com/chasedut/chatter/internal/config"
	"github.com/chasedut/chatter/internal/db"
	"github.com/chasedut/chatter/internal/env"
	"github.com/chasedut/chatter/internal/log"
	"github.com/chasedut/chatter/internal/tui"
	"github.com/chasedut/chatter/internal/version"
	"github.com/spf13/cobra"
)

type terminalSize struct {
	Width  int
	Height int
}

func termSize() terminalSize {
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil {
		slog.Info("Raw terminal size from term.GetSize", "raw_width", w, "raw_height", h)
		// The sidebar and editor need some room to lay out.
		return terminalSize{Width: max(w, 80), Height: max(h, 24)}
	}
	slog.Warn("Failed to get terminal size, using defaults")
	return terminalSize{Width: 80, Height: 24}
}

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().StringP("server", "s", "", "Chat backend URL (overrides config)")

	rootCmd.Flags().BoolP("help", "h", false, "Help")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(schemaCmd)
}

var rootCmd = &cobra.Command{
	Use:   "chatter",
	Short: "Terminal chat client for a remote chat backend",
	Long: heredoc.Doc(`
		Chatter is a terminal client for a chat backend. It keeps a sidebar of
		your chat sessions grouped by date, streams replies as they are
		written and renders them as Markdown.
	`),
	Example: heredoc.Doc(`
		# Run in interactive mode
		chatter

		# Talk to a different backend
		chatter -s https://chat.example.com

		# Run with debug logging in a specific directory
		chatter -d -c /path/to/project

		# Send a single message and print the reply
		chatter run "Explain the use of context in Go"

		# Search the web through the backend
		chatter search "bubbletea v2 release notes"
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		size := termSize()
		slog.Info("Terminal size obtained", "width", size.Width, "height", size.Height)

		program := tea.NewProgram(
			tui.NewWithSize(app, size.Width, size.Height),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
			tea.WithWindowSize(size.Width, size.Height),
		)

		go app.Subscribe(program)

		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func Execute() {
	if err := env.LoadDotEnv(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// setupApp handles the common setup logic for both interactive and
// non-interactive modes. Interactive runs always log to a file since the
// terminal belongs to the TUI; the other commands log to stderr in debug mode.
func setupApp(cmd *cobra.Command, interactive bool) (*app.App, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, interactive)

	// Connect to DB; this will also run migrations.
	conn, err := db.Connect(ctx, cfg.Options.DataDirectory)
	if err != nil {
		return nil, err
	}

	appInstance, err := app.New(ctx, conn, cfg)
	if err != nil {
		slog.Error("Failed to create app instance", "error", err)
		conn.Close()
		return nil, err
	}
	return appInstance, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	server, _ := cmd.Flags().GetString("server")

	cwd, err := ResolveCwd(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd, debug)
	if err != nil {
		return nil, err
	}
	if server != "" {
		if err := cfg.SetServerURL(server); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, interactive bool) {
	debug := cfg.Options.Debug
	if !interactive && debug {
		log.SetupConsole(os.Stderr, true)
		return
	}
	log.Setup(filepath.Join(cfg.Options.DataDirectory, "logs", "chatter.log"), debug)
}

func MaybePrependStdin(prompt string) (string, error) {
	if term.IsTerminal(os.Stdin.Fd()) {
		return prompt, nil
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return prompt, err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		return prompt, nil
	}
	bts, err := io.ReadAll(os.Stdin)
	if err != nil {
		return prompt, err
	}
	return string(bts) + "\n\n" + prompt, nil
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
