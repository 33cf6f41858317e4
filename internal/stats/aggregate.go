package stats

import (
	"slices"
	"strconv"

	"github.com/samber/lo"

	"ticket-stats/internal/tickets"
)

// Report labels of the three system flags.
const (
	SystemOA        = "OA系统"
	SystemMarketing = "营销平台"
	SystemU8C       = "U8C"
)

// SystemCounts is the number of tickets with each system flag checked.
type SystemCounts struct {
	OA        int `json:"OA系统"`
	Marketing int `json:"营销平台"`
	U8C       int `json:"U8C"`
}

// Aggregates holds every grouped statistic of one pipeline run.
// Per-year maps are keyed by the four-digit year.
type Aggregates struct {
	DeptTop10             Table            `json:"dept_top10"`
	DeptAll               Table            `json:"dept_all"`
	OriginalDeptAll       Table            `json:"original_dept_all"`
	DeptByYear            map[string]Table `json:"dept_by_year"`
	DeptByYearAll         map[string]Table `json:"dept_by_year_all"`
	OriginalDeptByYearAll map[string]Table `json:"original_dept_by_year_all"`

	DeptTop10NoDraft             Table            `json:"dept_top10_no_draft"`
	DeptAllNoDraft               Table            `json:"dept_all_no_draft"`
	OriginalDeptAllNoDraft       Table            `json:"original_dept_all_no_draft"`
	DeptByYearNoDraft            map[string]Table `json:"dept_by_year_no_draft"`
	DeptByYearAllNoDraft         map[string]Table `json:"dept_by_year_all_no_draft"`
	OriginalDeptByYearAllNoDraft map[string]Table `json:"original_dept_by_year_all_no_draft"`

	SystemStats         SystemCounts            `json:"system_stats"`
	SystemByYear        map[string]SystemCounts `json:"system_by_year"`
	SystemStatsNoDraft  SystemCounts            `json:"system_stats_no_draft"`
	SystemByYearNoDraft map[string]SystemCounts `json:"system_by_year_no_draft"`

	YearStats        Table `json:"year_stats"`
	YearStatsNoDraft Table `json:"year_stats_no_draft"`

	TypeStats         Table            `json:"type_stats"`
	TypeByYear        map[string]Table `json:"type_by_year"`
	TypeStatsNoDraft  Table            `json:"type_stats_no_draft"`
	TypeByYearNoDraft map[string]Table `json:"type_by_year_no_draft"`

	StatusStats  Table            `json:"status_stats"`
	StatusByYear map[string]Table `json:"status_by_year"`

	AuditStats  Table            `json:"audit_stats"`
	AuditByYear map[string]Table `json:"audit_by_year"`

	MonthlyStats         Table            `json:"monthly_stats"`
	MonthlyByYear        map[string]Table `json:"monthly_by_year"`
	MonthlyStatsNoDraft  Table            `json:"monthly_stats_no_draft"`
	MonthlyByYearNoDraft map[string]Table `json:"monthly_by_year_no_draft"`

	UnfinishedTickets []UnfinishedTicket            `json:"unfinished_tickets"`
	UnfinishedByYear  map[string][]UnfinishedTicket `json:"unfinished_by_year"`
}

var (
	byTopDepartment = func(t tickets.Ticket) string { return t.TopDepartment }
	byDepartment    = func(t tickets.Ticket) string { return t.Department }
	byType          = func(t tickets.Ticket) string { return t.Type }
	byProcess       = func(t tickets.Ticket) string { return t.ProcessStatus }
	byAudit         = func(t tickets.Ticket) string { return t.AuditStatus }
	byMonth         = func(t tickets.Ticket) string { return t.Month }
)

// Aggregate computes every statistic table over the cleaned, department-resolved tickets.
func Aggregate(items []tickets.Ticket) Aggregates {
	noDraft := ExcludeDrafts(items)

	ranked := func(key KeyFunc) func([]tickets.Ticket) Table {
		return func(group []tickets.Ticket) Table { return CountBy(group, key) }
	}
	top10 := func(key KeyFunc) func([]tickets.Ticket) Table {
		return func(group []tickets.Ticket) Table { return CountBy(group, key).Top(TopN) }
	}
	monthly := func(group []tickets.Ticket) Table { return CountByLabelOrder(group, byMonth) }

	return Aggregates{
		DeptTop10:             CountBy(items, byTopDepartment).Top(TopN),
		DeptAll:               CountBy(items, byTopDepartment),
		OriginalDeptAll:       CountBy(items, byDepartment),
		DeptByYear:            PerYear(items, top10(byTopDepartment)),
		DeptByYearAll:         PerYear(items, ranked(byTopDepartment)),
		OriginalDeptByYearAll: PerYear(items, ranked(byDepartment)),

		DeptTop10NoDraft:             CountBy(noDraft, byTopDepartment).Top(TopN),
		DeptAllNoDraft:               CountBy(noDraft, byTopDepartment),
		OriginalDeptAllNoDraft:       CountBy(noDraft, byDepartment),
		DeptByYearNoDraft:            PerYear(noDraft, top10(byTopDepartment)),
		DeptByYearAllNoDraft:         PerYear(noDraft, ranked(byTopDepartment)),
		OriginalDeptByYearAllNoDraft: PerYear(noDraft, ranked(byDepartment)),

		SystemStats:         CountSystems(items),
		SystemByYear:        PerYear(items, CountSystems),
		SystemStatsNoDraft:  CountSystems(noDraft),
		SystemByYearNoDraft: PerYear(noDraft, CountSystems),

		YearStats:        CountByYear(items),
		YearStatsNoDraft: CountByYear(noDraft),

		TypeStats:         CountBy(items, byType),
		TypeByYear:        PerYear(items, ranked(byType)),
		TypeStatsNoDraft:  CountBy(noDraft, byType),
		TypeByYearNoDraft: PerYear(noDraft, ranked(byType)),

		StatusStats:  CountBy(items, byProcess),
		StatusByYear: PerYear(items, ranked(byProcess)),

		AuditStats:  CountBy(items, byAudit),
		AuditByYear: PerYear(items, ranked(byAudit)),

		MonthlyStats:         monthly(items),
		MonthlyByYear:        PerYear(items, monthly),
		MonthlyStatsNoDraft:  monthly(noDraft),
		MonthlyByYearNoDraft: PerYear(noDraft, monthly),

		UnfinishedTickets: Unfinished(items),
		UnfinishedByYear:  PerYear(items, Unfinished),
	}
}

// ExcludeDrafts returns the tickets whose audit status is not draft.
func ExcludeDrafts(items []tickets.Ticket) []tickets.Ticket {
	return lo.Filter(items, func(t tickets.Ticket, _ int) bool {
		return !t.IsDraft()
	})
}

// SplitByYear groups dated tickets by creation year. Undated tickets are left out.
// Years are returned ascending; only years present in the data appear.
func SplitByYear(items []tickets.Ticket) ([]int, map[int][]tickets.Ticket) {
	dated := lo.Filter(items, func(t tickets.Ticket, _ int) bool { return t.HasDate() })
	groups := lo.GroupBy(dated, func(t tickets.Ticket) int { return t.Year })

	years := lo.Keys(groups)
	slices.Sort(years)
	return years, groups
}

// PerYear applies fn to each year's tickets.
func PerYear[T any](items []tickets.Ticket, fn func([]tickets.Ticket) T) map[string]T {
	years, groups := SplitByYear(items)
	out := make(map[string]T, len(years))
	for _, y := range years {
		out[strconv.Itoa(y)] = fn(groups[y])
	}
	return out
}

// CountSystems counts checked system flags.
func CountSystems(items []tickets.Ticket) SystemCounts {
	var c SystemCounts
	for _, t := range items {
		if tickets.Checked(t.OAFlag) {
			c.OA++
		}
		if tickets.Checked(t.MarketingFlag) {
			c.Marketing++
		}
		if tickets.Checked(t.U8CFlag) {
			c.U8C++
		}
	}
	return c
}
