// Package pipeline runs the load, resolve, aggregate and assemble stages end to end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ticket-stats/internal/org"
	"ticket-stats/internal/report"
	"ticket-stats/internal/stats"
	"ticket-stats/internal/tickets"
	"ticket-stats/internal/workbook"
)

// Options names the files of one run.
type Options struct {
	TicketFile string
	// OrgFile is optional; when empty every department is its own top level.
	OrgFile    string
	OutputFile string
}

// Result reports what a run produced.
type Result struct {
	Document  report.Document
	Load      tickets.LoadStats
	Problems  []org.Problem
	OrgNodes  int
	Elapsed   time.Duration
	Generated time.Time
}

// Runner executes the pipeline against a workbook reader.
type Runner struct {
	reader workbook.Reader
}

// NewRunner creates a Runner. A nil reader uses excelize.
func NewRunner(reader workbook.Reader) *Runner {
	if reader == nil {
		reader = workbook.ExcelReader{}
	}
	return &Runner{reader: reader}
}

// Run recomputes the report from the source workbooks and writes it to
// opts.OutputFile when set. ctx is checked between stages; a cancelled run
// never writes output.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	rows, err := r.reader.ReadRows(opts.TicketFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket workbook: %w", err)
	}
	items, loadStats := tickets.Load(rows)
	log.Info().
		Int("rows", loadStats.DataRows).
		Int("tickets", len(items)).
		Int("missingSerial", loadStats.MissingSerial).
		Int("unparsableDates", loadStats.UnparsableDates).
		Msg("Ticket table loaded")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolver, nodes, err := r.loadResolver(opts.OrgFile)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Department = org.CleanName(items[i].RawDepartment)
		items[i].TopDepartment = resolver.Resolve(items[i].Department)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := report.Assemble(report.Summarize(items), stats.Aggregate(items))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.OutputFile != "" {
		if err := report.Write(opts.OutputFile, doc); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Document:  doc,
		Load:      loadStats,
		Problems:  resolver.Problems(),
		OrgNodes:  nodes,
		Elapsed:   time.Since(start),
		Generated: time.Now(),
	}
	log.Info().
		Int("tickets", doc.Summary.TotalTickets).
		Int("departments", doc.Summary.TotalDepartments).
		Int("orgProblems", len(res.Problems)).
		Dur("elapsed", res.Elapsed).
		Msg("Report generated")
	return res, nil
}

func (r *Runner) loadResolver(path string) (*org.Resolver, int, error) {
	if path == "" {
		log.Debug().Msg("No organization file configured, departments resolve to themselves")
		return nil, 0, nil
	}

	rows, err := r.reader.ReadRows(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read organization workbook: %w", err)
	}
	nodes, err := org.ParseNodes(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse organization workbook: %w", err)
	}

	resolver := org.NewResolver(nodes)
	log.Info().Int("nodes", len(nodes)).Int("names", resolver.Len()).Msg("Organization hierarchy loaded")
	return resolver, len(nodes), nil
}
