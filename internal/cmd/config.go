package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/chasedut/chatter/internal/prefs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration and preferences",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a field in the global config file",
	Long: heredoc.Doc(`
		Set a field in the global config file. Keys use dot notation and
		values are parsed as JSON when possible, so numbers and booleans keep
		their type.
	`),
	Example: heredoc.Doc(`
		chatter config set server.url https://chat.example.com
		chatter config set server.request_timeout 120
		chatter config set options.default_model phi
	`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.SetConfigField(args[0], configValue(args[1])); err != nil {
			return err
		}
		color.Green("Set %s in %s", args[0], cfg.GlobalConfigPath())
		return nil
	},
}

// configValue keeps numbers and booleans typed; anything else is stored as a
// string.
func configValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case bool, float64:
			return v
		}
	}
	return raw
}

var configPrefsCmd = &cobra.Command{
	Use:   "prefs [key] [value]",
	Short: "Show or change stored preferences",
	Long: heredoc.Docf(`
		Without arguments every preference is listed. With a key its value is
		printed, and with a key and a value the preference is stored.

		Keys: %s
	`, strings.Join(prefs.Keys, ", ")),
	Example: heredoc.Doc(`
		chatter config prefs
		chatter config prefs theme light
		chatter config prefs api_type gemini
		chatter config prefs use_search true
	`),
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := setupApp(cmd, false)
		if err != nil {
			return err
		}
		defer appInstance.Shutdown()
		ctx := cmd.Context()

		switch len(args) {
		case 0:
			printPreferences(appInstance.Preferences())
			return nil
		case 1:
			v, ok, err := appInstance.Prefs.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("preference %s is not set", args[0])
			}
			if args[0] == prefs.KeyAPIKey {
				v = maskSecret(v)
			}
			fmt.Println(v)
			return nil
		default:
			p, err := appInstance.UpdatePreference(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			color.Green("Saved %s", args[0])
			if args[0] == prefs.KeyAPIType && p.APIKey == "" {
				color.Yellow("The stored API key was cleared; set a new one with: chatter config prefs api_key <key>")
			}
			return nil
		}
	},
}

func printPreferences(p prefs.Preferences) {
	key := color.New(color.FgCyan)
	rows := [][2]string{
		{prefs.KeyAPIKey, maskSecret(p.APIKey)},
		{prefs.KeyAPIType, p.APIType},
		{prefs.KeyTheme, p.Theme},
		{prefs.KeyUseSearch, strconv.FormatBool(p.UseSearch)},
		{prefs.KeyModelType, p.ModelType},
	}
	for _, r := range rows {
		fmt.Printf("%s %s\n", key.Sprintf("%-11s", r[0]), r[1])
	}
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return strings.Repeat("*", len(s))
	default:
		return s[:3] + strings.Repeat("*", len(s)-7) + s[len(s)-4:]
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPrefsCmd)
}
