// Package mcp exposes the generated report to MCP clients over stdio.
package mcp

import (
	"context"
	"errors"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"ticket-stats/internal/report"
)

// ErrNoReport is returned by every tool while no report has been generated.
var ErrNoReport = errors.New("report has not been generated yet; run `ticket-stats generate` first")

// Server answers report queries. The report is re-read on every call so
// uploads processed by a running `serve` are visible immediately.
type Server struct {
	reportPath string
	charts     bool
	server     *mcp.Server
}

// NewServer registers the report tools. With charts enabled, table results
// carry an additional Mermaid rendering.
func NewServer(reportPath string, charts bool, version string) *Server {
	s := &Server{
		reportPath: reportPath,
		charts:     charts,
		server:     mcp.NewServer(&mcp.Implementation{Name: "ticket-stats", Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("report", s.reportPath).Bool("charts", s.charts).Msg("Starting MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) load() (*report.Document, error) {
	doc, err := report.Read(s.reportPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoReport
		}
		return nil, err
	}
	return doc, nil
}
