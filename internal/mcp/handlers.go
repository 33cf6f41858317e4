package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"ticket-stats/internal/report"
	"ticket-stats/internal/stats"
	"ticket-stats/internal/visuals"
)

// pieLimit is the largest table rendered as a pie; bigger ones become bar charts.
const pieLimit = 8

type summaryResult struct {
	report.Summary
	Years  []string `json:"years"`
	Tables []string `json:"tables"`
}

type tableResult struct {
	Name  string      `json:"name"`
	Year  string      `json:"year,omitempty"`
	Total int         `json:"total"`
	Table stats.Table `json:"table"`
}

type systemsResult struct {
	Year          string             `json:"year,omitempty"`
	ExcludeDrafts bool               `json:"exclude_drafts"`
	Counts        stats.SystemCounts `json:"counts"`
}

type unfinishedResult struct {
	Year     string                   `json:"year,omitempty"`
	Total    int                      `json:"total"`
	Returned int                      `json:"returned"`
	Tickets  []stats.UnfinishedTicket `json:"tickets"`
}

func (s *Server) handleSummary(_ context.Context, _ *mcp.CallToolRequest, _ summaryArgs) (*mcp.CallToolResult, any, error) {
	doc, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	return textResult(summaryResult{
		Summary: doc.Summary,
		Years:   doc.Years(),
		Tables:  doc.TableNames(),
	})
}

func (s *Server) handleTable(_ context.Context, _ *mcp.CallToolRequest, args tableArgs) (*mcp.CallToolResult, any, error) {
	doc, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	table, err := doc.Table(args.Name, args.Year)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("table", args.Name).Str("year", args.Year).Int("labels", table.Len()).Msg("report_table")

	var charts []string
	if s.charts {
		charts = append(charts, chartFor(title(args.Name, args.Year), table))
	}
	return textResult(tableResult{Name: args.Name, Year: args.Year, Total: table.Total(), Table: table}, charts...)
}

func (s *Server) handleSystems(_ context.Context, _ *mcp.CallToolRequest, args systemsArgs) (*mcp.CallToolResult, any, error) {
	doc, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	counts := doc.Systems(args.Year, args.ExcludeDrafts)

	var charts []string
	if s.charts {
		charts = append(charts, visuals.GenerateSystemsChart(title("system_stats", args.Year), counts))
	}
	return textResult(systemsResult{Year: args.Year, ExcludeDrafts: args.ExcludeDrafts, Counts: counts}, charts...)
}

func (s *Server) handleUnfinished(_ context.Context, _ *mcp.CallToolRequest, args unfinishedArgs) (*mcp.CallToolResult, any, error) {
	if args.Limit < 0 {
		return nil, nil, fmt.Errorf("limit must not be negative, got %d", args.Limit)
	}
	doc, err := s.load()
	if err != nil {
		return nil, nil, err
	}

	list := doc.Unfinished(args.Year)
	res := unfinishedResult{Year: args.Year, Total: len(list), Tickets: list}
	if args.Limit > 0 && len(list) > args.Limit {
		res.Tickets = list[:args.Limit]
	}
	res.Returned = len(res.Tickets)
	return textResult(res)
}

func title(name, year string) string {
	if year == "" {
		return name
	}
	return name + " " + year
}

func chartFor(title string, table stats.Table) string {
	if strings.HasPrefix(title, "monthly_") || table.Len() > pieLimit {
		return visuals.GenerateBarChart(title, "工单数", table)
	}
	return visuals.GeneratePieChart(title, table)
}

// textResult renders data as indented JSON, followed by any non-empty charts.
func textResult(data any, charts ...string) (*mcp.CallToolResult, any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}

	res := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(out)}}}
	for _, c := range charts {
		if c != "" {
			res.Content = append(res.Content, &mcp.TextContent{Text: c})
		}
	}
	return res, nil, nil
}
