package report

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ticket-stats/internal/stats"
	"ticket-stats/internal/tickets"
)

func day(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

func sample() []tickets.Ticket {
	return []tickets.Ticket{
		{Serial: "1", Department: "研发部", TopDepartment: "研发部", Created: day("2023-02-10"), Year: 2023, Month: "2023-02", ProcessStatus: tickets.UnfinishedStatus},
		{Serial: "2", Department: "市场部", TopDepartment: "市场部", Created: day("2022-11-01"), Year: 2022, Month: "2022-11"},
		{Serial: "3", Department: "研发部", TopDepartment: "研发部"},
		{Serial: "4"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	want := Summary{
		TotalTickets:     4,
		TotalDepartments: 2,
		DateRange:        DateRange{Start: "2022-11-01", End: "2023-02-10"},
	}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}

	empty := Summarize(nil)
	if empty.DateRange.Start != NoData || empty.DateRange.End != NoData || empty.TotalTickets != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

var requiredKeys = []string{
	"summary", "dept_top10", "dept_all", "original_dept_all", "dept_by_year", "dept_by_year_all",
	"original_dept_by_year_all", "dept_top10_no_draft", "dept_all_no_draft", "original_dept_all_no_draft",
	"dept_by_year_no_draft", "dept_by_year_all_no_draft", "original_dept_by_year_all_no_draft",
	"system_stats", "system_by_year", "system_stats_no_draft", "system_by_year_no_draft",
	"year_stats", "year_stats_no_draft", "type_stats", "type_by_year", "type_stats_no_draft",
	"type_by_year_no_draft", "status_stats", "status_by_year", "audit_stats", "audit_by_year",
	"monthly_stats", "monthly_by_year", "monthly_stats_no_draft", "monthly_by_year_no_draft",
	"unfinished_tickets", "unfinished_by_year",
}

func TestEncode(t *testing.T) {
	items := sample()
	doc := Assemble(Summarize(items), stats.Aggregate(items))

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !strings.Contains(string(data), "研发部") {
		t.Error("non-ASCII text must not be escaped")
	}
	if strings.Contains(string(data), `\u`) {
		t.Error("unexpected unicode escape in output")
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	for _, key := range requiredKeys {
		if _, ok := generic[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if len(generic) != len(requiredKeys) {
		t.Errorf("document has %d keys, want %d", len(generic), len(requiredKeys))
	}

	var summary struct {
		DateRange map[string]string `json:"date_range"`
	}
	if err := json.Unmarshal(generic["summary"], &summary); err != nil || summary.DateRange["start"] != "2022-11-01" {
		t.Errorf("summary.date_range.start not encoded: %s", generic["summary"])
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ticket_data.json")
	items := sample()
	doc := Assemble(Summarize(items), stats.Aggregate(items))

	if err := Write(path, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Summary != doc.Summary {
		t.Errorf("summary round trip: %+v vs %+v", got.Summary, doc.Summary)
	}
	if got.DeptTop10.Count("研发部") != 2 {
		t.Errorf("dept_top10 lost data: %+v", got.DeptTop10)
	}

	// Overwrite keeps the file readable.
	doc.Summary.TotalTickets = 99
	if err := Write(path, doc); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if got, _ := Read(path); got.Summary.TotalTickets != 99 {
		t.Error("overwrite not visible")
	}
}

func TestDocumentLookup(t *testing.T) {
	items := sample()
	doc := Assemble(Summarize(items), stats.Aggregate(items))

	tbl, err := doc.Table("dept_top10", "2023")
	if err != nil || tbl.Count("研发部") != 1 {
		t.Errorf("Table(dept_top10, 2023) = %+v, %v", tbl, err)
	}
	if tbl, err := doc.Table("type_stats", "1999"); err != nil || tbl.Len() != 0 {
		t.Errorf("absent year should be empty, got %+v, %v", tbl, err)
	}
	if _, err := doc.Table("year_stats", "2023"); err == nil {
		t.Error("year_stats has no per-year breakdown")
	}
	if _, err := doc.Table("nope", ""); err == nil {
		t.Error("unknown table should fail")
	}
	if len(doc.Unfinished("2023")) != 1 || len(doc.Unfinished("1999")) != 0 {
		t.Error("Unfinished lookup wrong")
	}
	if len(doc.TableNames()) != len(doc.Tables()) {
		t.Error("TableNames incomplete")
	}
}
