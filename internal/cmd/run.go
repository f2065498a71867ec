package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/app"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [prompt...]",
	Short: "Send a single message and print the reply",
	Long: heredoc.Doc(`
		Send a single message to the chat backend and stream the reply to
		stdout. Input piped on stdin is prepended to the prompt.
	`),
	Example: heredoc.Doc(`
		# Ask a question in a new chat
		chatter run "Explain the use of context in Go"

		# Pipe input to the prompt
		cat main.go | chatter run "Review this file"

		# Continue an existing chat with search enabled
		chatter run --chat 42 --search "What changed since then?"

		# Describe an image
		chatter run --image diagram.png "What does this show?"
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, _ := cmd.Flags().GetString("chat")
		model, _ := cmd.Flags().GetString("model")
		imagePath, _ := cmd.Flags().GetString("image")

		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		prompt, err := MaybePrependStdin(strings.Join(args, " "))
		if err != nil {
			slog.Error("Failed to read from stdin", "error", err)
			return err
		}

		opts := app.RunOptions{
			Prompt:    prompt,
			ChatID:    api.ID(chatID),
			Model:     model,
			ImagePath: imagePath,
		}
		if cmd.Flags().Changed("search") {
			on, _ := cmd.Flags().GetBool("search")
			opts.UseSearch = &on
		}

		reply, err := appInstance.RunNonInteractive(cmd.Context(), opts, os.Stdout)
		if err != nil {
			return err
		}
		if reply.ChatID != "" {
			fmt.Fprintf(os.Stderr, "chat %s\n", reply.ChatID)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("chat", "", "Continue the chat with this id")
	runCmd.Flags().Bool("search", false, "Let the backend augment the reply with web search")
	runCmd.Flags().StringP("model", "m", "", "Model type to use (gemma, phi, openai, gemini)")
	runCmd.Flags().StringP("image", "i", "", "Attach an image file")
}
