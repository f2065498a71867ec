package cmd

import (
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/x/term"
	"github.com/chasedut/chatter/internal/markdown"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Run a web search through the backend",
	Example: heredoc.Doc(`
		# Print formatted results
		chatter search "golang generics tutorial"

		# Plain output for scripts
		chatter search --plain "sqlite wal mode" > results.md
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		var md markdown.Formatter = markdown.Plain{}
		if !plain && term.IsTerminal(os.Stdout.Fd()) {
			md = appInstance.Markdown
		}
		_, err = appInstance.RunSearch(cmd.Context(), strings.Join(args, " "), os.Stdout, md)
		return err
	},
}

func init() {
	searchCmd.Flags().Bool("plain", false, "Print raw Markdown even on a terminal")
}
