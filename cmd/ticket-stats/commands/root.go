package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ticket-stats/internal/config"
	"ticket-stats/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "ticket-stats",
	Short: "ticket-stats turns the ticket workbook into dashboard statistics",
	Long: `Reads the requirement ticket workbook and the organization workbook, resolves every
department to its top-level unit and writes the dashboard report (ticket_data.json).

Without a subcommand the report is generated once.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("dataPath", cfg.DataPath).
			Msg("ticket-stats starting")
		return nil
	},
	RunE: runGenerate,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("ticket-stats {{.Version}} (commit " + Commit + ", built " + BuildDate + ")\n")

	rootCmd.AddCommand(generateCmd, serveCmd, mcpCmd, schemaCmd)
}
