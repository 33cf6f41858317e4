package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ticket-stats/internal/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the report document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		schema, err := report.Schema()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
