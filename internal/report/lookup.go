package report

import (
	"fmt"
	"slices"

	"ticket-stats/internal/stats"
)

// Tables returns the overall ranked tables keyed by their document name.
func (d *Document) Tables() map[string]stats.Table {
	return map[string]stats.Table{
		"dept_top10":                 d.DeptTop10,
		"dept_all":                   d.DeptAll,
		"original_dept_all":          d.OriginalDeptAll,
		"dept_top10_no_draft":        d.DeptTop10NoDraft,
		"dept_all_no_draft":          d.DeptAllNoDraft,
		"original_dept_all_no_draft": d.OriginalDeptAllNoDraft,
		"year_stats":                 d.YearStats,
		"year_stats_no_draft":        d.YearStatsNoDraft,
		"type_stats":                 d.TypeStats,
		"type_stats_no_draft":        d.TypeStatsNoDraft,
		"status_stats":               d.StatusStats,
		"audit_stats":                d.AuditStats,
		"monthly_stats":              d.MonthlyStats,
		"monthly_stats_no_draft":     d.MonthlyStatsNoDraft,
	}
}

// YearTables returns the per-year tables keyed by the name of their overall counterpart.
func (d *Document) YearTables() map[string]map[string]stats.Table {
	return map[string]map[string]stats.Table{
		"dept_top10":                 d.DeptByYear,
		"dept_all":                   d.DeptByYearAll,
		"original_dept_all":          d.OriginalDeptByYearAll,
		"dept_top10_no_draft":        d.DeptByYearNoDraft,
		"dept_all_no_draft":          d.DeptByYearAllNoDraft,
		"original_dept_all_no_draft": d.OriginalDeptByYearAllNoDraft,
		"type_stats":                 d.TypeByYear,
		"type_stats_no_draft":        d.TypeByYearNoDraft,
		"status_stats":               d.StatusByYear,
		"audit_stats":                d.AuditByYear,
		"monthly_stats":              d.MonthlyByYear,
		"monthly_stats_no_draft":     d.MonthlyByYearNoDraft,
	}
}

// TableNames lists the names accepted by Table, sorted.
func (d *Document) TableNames() []string {
	names := make([]string, 0, len(d.Tables()))
	for name := range d.Tables() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Table looks up a ranked table, overall when year is empty.
// A year absent from the data yields an empty table.
func (d *Document) Table(name, year string) (stats.Table, error) {
	overall, ok := d.Tables()[name]
	if !ok {
		return stats.Table{}, fmt.Errorf("unknown table %q", name)
	}
	if year == "" {
		return overall, nil
	}

	byYear, ok := d.YearTables()[name]
	if !ok {
		return stats.Table{}, fmt.Errorf("table %q has no per-year breakdown", name)
	}
	if t, ok := byYear[year]; ok {
		return t, nil
	}
	return stats.Table{Labels: []string{}, Data: []int{}}, nil
}

// Systems returns the system flag counts, overall when year is empty.
func (d *Document) Systems(year string, excludeDrafts bool) stats.SystemCounts {
	switch {
	case year == "" && excludeDrafts:
		return d.SystemStatsNoDraft
	case year == "":
		return d.SystemStats
	case excludeDrafts:
		return d.SystemByYearNoDraft[year]
	default:
		return d.SystemByYear[year]
	}
}

// Unfinished returns the unfinished ticket details, overall when year is empty.
func (d *Document) Unfinished(year string) []stats.UnfinishedTicket {
	if year == "" {
		return d.UnfinishedTickets
	}
	if list, ok := d.UnfinishedByYear[year]; ok {
		return list
	}
	return []stats.UnfinishedTicket{}
}

// Years lists the years present in the data, ascending.
func (d *Document) Years() []string {
	years := make([]string, 0, len(d.DeptByYearAll))
	for y := range d.DeptByYearAll {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}
