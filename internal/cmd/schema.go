package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/chasedut/chatter/internal/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for configuration",
	Long:   "Generate JSON schema for the chatter configuration file",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := jsonschema.Reflector{
			DoNotReference: true,
		}
		schema := reflector.Reflect(&config.Config{})
		schema.ID = "https://github.com/chasedut/chatter/raw/main/schema.json"
		schema.Title = "Chatter Configuration"

		bts, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(bts))
		return nil
	},
}
