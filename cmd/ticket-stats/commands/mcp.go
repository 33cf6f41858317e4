package commands

import (
	"github.com/spf13/cobra"

	"ticket-stats/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Answer report queries as an MCP server on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mcp.NewServer(cfg.OutputFile, cfg.EnableMermaidCharts, Version).Run(cmd.Context())
	},
}
