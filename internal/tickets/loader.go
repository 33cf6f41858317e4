package tickets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// LeadingRows is the number of physical rows before the first ticket: the
// column header row followed by the title and the description row.
const LeadingRows = 3

// dateLayouts are tried in order for textual date cells.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-1-2",
	"2006.01.02",
	"2006年1月2日",
	time.RFC3339,
}

// LoadStats describes what the loader discarded.
type LoadStats struct {
	DataRows        int // rows after the leading rows
	MissingSerial   int // rows dropped for an empty serial id
	UnparsableDates int // rows kept with a nil creation date
}

// Load converts raw workbook rows into cleaned tickets.
//
// The first LeadingRows rows are discarded, the remaining cells are mapped
// positionally onto Columns, rows without a serial id are dropped, and the
// creation date is parsed with unparsable values becoming nil.
func Load(rows [][]string) ([]Ticket, LoadStats) {
	var stats LoadStats
	if len(rows) <= LeadingRows {
		return []Ticket{}, stats
	}

	data := rows[LeadingRows:]
	stats.DataRows = len(data)

	tickets := make([]Ticket, 0, len(data))
	for i, row := range data {
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		t := Ticket{
			Serial:        cell(0),
			Submitter:     cell(1),
			RawDepartment: cell(2),
			Type:          cell(4),
			Subtype:       cell(5),
			OAFlag:        cell(6),
			MarketingFlag: cell(7),
			U8CFlag:       cell(8),
			Content:       cell(9),
			AuditStatus:   cell(10),
			ProcessStatus: cell(11),
		}
		if t.Serial == "" {
			stats.MissingSerial++
			continue
		}

		if raw := cell(3); raw != "" {
			created, err := ParseDate(raw)
			if err != nil {
				stats.UnparsableDates++
				log.Warn().Str("serial", t.Serial).Str("value", raw).Int("row", i+LeadingRows+1).Msg("Unparsable creation date, excluded from yearly statistics")
			} else {
				t.Created = &created
				t.Year = created.Year()
				t.Month = created.Format("2006-01")
			}
		}

		tickets = append(tickets, t)
	}

	return tickets, stats
}

// ParseDate accepts Excel serial numbers and the common textual date layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, fmt.Errorf("invalid date serial %q", s)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %q: %w", s, err)
		}
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
