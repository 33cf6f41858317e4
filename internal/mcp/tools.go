package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type summaryArgs struct{}

type tableArgs struct {
	Name string `json:"name" jsonschema:"table name as listed by report_summary, e.g. dept_top10 or monthly_stats_no_draft"`
	Year string `json:"year,omitempty" jsonschema:"four-digit year; omit for all years"`
}

type systemsArgs struct {
	Year          string `json:"year,omitempty" jsonschema:"four-digit year; omit for all years"`
	ExcludeDrafts bool   `json:"exclude_drafts,omitempty" jsonschema:"leave out tickets whose audit status is draft"`
}

type unfinishedArgs struct {
	Year  string `json:"year,omitempty" jsonschema:"four-digit creation year; omit for all years"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of tickets returned, 0 for all"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report_summary",
		Description: "Headline numbers of the ticket report: total tickets, distinct departments, creation date range, available years and table names.",
	}, s.handleSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report_table",
		Description: "One ranked distribution table (labels with counts) from the ticket report, overall or for a single year.",
	}, s.handleTable)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report_systems",
		Description: "Number of tickets involving the OA, marketing and U8C systems, overall or for a single year.",
	}, s.handleSystems)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report_unfinished",
		Description: "Tickets whose process status is still unfinished, with requester, department and content.",
	}, s.handleUnfinished)
}
