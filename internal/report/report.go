// Package report assembles the dashboard document and persists it.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"

	"ticket-stats/internal/stats"
	"ticket-stats/internal/tickets"
)

// NoData is the date range value used when no ticket carries a date.
const NoData = "N/A"

// DateRange spans the earliest and latest creation dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary is the headline block of the dashboard.
type Summary struct {
	TotalTickets     int       `json:"total_tickets"`
	TotalDepartments int       `json:"total_departments"`
	DateRange        DateRange `json:"date_range"`
}

// Document is the complete dashboard payload.
type Document struct {
	Summary Summary `json:"summary"`
	stats.Aggregates
}

// Summarize computes the summary block. Departments are counted by cleaned name, empty names excluded.
func Summarize(items []tickets.Ticket) Summary {
	s := Summary{
		TotalTickets: len(items),
		DateRange:    DateRange{Start: NoData, End: NoData},
	}

	departments := make(map[string]struct{})
	var first, last *time.Time
	for _, t := range items {
		if t.Department != "" {
			departments[t.Department] = struct{}{}
		}
		if t.Created == nil {
			continue
		}
		if first == nil || t.Created.Before(*first) {
			first = t.Created
		}
		if last == nil || t.Created.After(*last) {
			last = t.Created
		}
	}

	s.TotalDepartments = len(departments)
	if first != nil {
		s.DateRange = DateRange{Start: first.Format(time.DateOnly), End: last.Format(time.DateOnly)}
	}
	return s
}

// Assemble merges the summary and the aggregates into one document.
func Assemble(summary Summary, aggs stats.Aggregates) Document {
	return Document{Summary: summary, Aggregates: aggs}
}

// Encode renders the document as indented UTF-8 JSON without escaping.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists the document at path. Readers observe either the old or the new file, never a partial one.
func Write(path string, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("Report saved")
	return nil
}

// Read loads a previously written document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &doc, nil
}
