package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/markdown"
	"github.com/chasedut/chatter/internal/session"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "List chat sessions grouped by date",
	Example: heredoc.Doc(`
		# List every chat
		chatter sessions

		# Only chats whose title or date matches
		chatter sessions --filter 9/14/2025

		# Print one chat
		chatter sessions show 42

		# Delete one chat, or all of them
		chatter sessions rm 42
		chatter sessions clear --yes
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")

		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		if err := appInstance.Sessions.Refresh(cmd.Context()); err != nil {
			return err
		}
		groups := appInstance.Sessions.Groups(filter, time.Now())
		if len(groups) == 0 {
			color.Yellow("No chats found")
			return nil
		}

		header := color.New(color.FgCyan, color.Bold)
		id := color.New(color.Faint)
		for i, g := range groups {
			if i > 0 {
				fmt.Println()
			}
			header.Println(g.Bucket)
			for _, c := range g.Chats {
				fmt.Printf("  %s  %s  %s\n",
					id.Sprintf("%-8s", c.ID),
					displayTitle(c),
					id.Sprint(session.FormatDate(c.CreatedAt, time.Local)),
				)
			}
		}
		return nil
	},
}

func displayTitle(c api.ChatSummary) string {
	if c.Title == "" {
		return session.DefaultTitle
	}
	return c.Title
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the messages of a chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		var md markdown.Formatter = markdown.Plain{}
		if !color.NoColor {
			md = appInstance.Markdown
		}
		_, err = appInstance.ShowChat(cmd.Context(), api.ID(args[0]), os.Stdout, md)
		return err
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a chat",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		if err := appInstance.Sessions.Delete(cmd.Context(), api.ID(args[0])); err != nil {
			return err
		}
		color.Green("Deleted chat %s", args[0])
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to delete every chat without --yes")
		}

		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()

		if err := appInstance.Sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		color.Green("Deleted all chats")
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringP("filter", "f", "", "Only list chats whose title or date contains this text")
	sessionsClearCmd.Flags().BoolP("yes", "y", false, "Confirm deleting every chat")

	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}
