package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ticket-stats/internal/report"
	"ticket-stats/internal/tickets"
	"ticket-stats/internal/workbook"
)

func ticketRows(depts ...string) [][]string {
	rows := [][]string{tickets.Columns, {"需求工单统计表"}, {"说明"}}
	for i, d := range depts {
		rows = append(rows, []string{
			string(rune('A' + i)), "申请人", d, "2024-03-0" + string(rune('1'+i%9)), "功能需求", "", "", "", "", "内容", "正常", "已结束",
		})
	}
	return rows
}

// fakeReader serves rows by file content so tests can swap real files on disk.
type fakeReader struct {
	byContent map[string][][]string
	delay     time.Duration
}

func (f fakeReader) ReadRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(string(data))
	if key == "slow" {
		time.Sleep(f.delay)
	}
	rows, ok := f.byContent[key]
	if !ok {
		return nil, errors.New("corrupt workbook")
	}
	return rows, nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunWithExcelWorkbooks(t *testing.T) {
	dir := t.TempDir()
	ticketFile := filepath.Join(dir, "tickets.xlsx")
	orgFile := filepath.Join(dir, "org.xlsx")
	out := filepath.Join(dir, "ticket_data.json")

	err := workbook.Write(ticketFile, workbook.Sheet{Name: "工单", Rows: [][]any{
		{"流水号", "申请人", "所在部门", "创建日期", "工单类型", "工单类型子类型", "OA系统", "营销平台", "U8C", "需求内容", "审核状态", "流程状态"},
		{"需求工单统计表"},
		{"说明: 每行一个工单", "", "填写部门"},
		{"SN-1", "张三", "研发部(分公司)", "2023-01-05", "功能需求", "", "勾选", "", "", "a", "正常", "未结束"},
		{"SN-2", "李四", "研发部", "2023-02-10", "功能需求", "", "", "", "", "b", "草稿", "已结束"},
		{"SN-3", "王五", "市场部", "", "系统优化", "", "", "", "", "c", "正常", "已结束"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	err = workbook.Write(orgFile, workbook.Sheet{Name: "组织", Rows: [][]any{
		{"Name", "Code", "PDepartmentCode"},
		{"名称", "编码", "上级编码"},
		{"技术中心", "01", "nan"},
		{"研发部", "0101", "01"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil).Run(context.Background(), Options{TicketFile: ticketFile, OrgFile: orgFile, OutputFile: out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	doc := res.Document
	if doc.Summary.TotalTickets != 3 || doc.Summary.TotalDepartments != 2 {
		t.Errorf("summary = %+v", doc.Summary)
	}
	if doc.DeptTop10.Count("技术中心") != 2 || doc.DeptTop10.Count("市场部") != 1 {
		t.Errorf("dept_top10 should use top-level names: %+v", doc.DeptTop10)
	}
	if doc.OriginalDeptAll.Count("研发部") != 2 {
		t.Errorf("original_dept_all should use cleaned names: %+v", doc.OriginalDeptAll)
	}
	if doc.YearStats.Count("2023") != 2 {
		t.Errorf("year_stats = %+v", doc.YearStats)
	}
	if doc.SystemStats.OA != 1 {
		t.Errorf("system_stats = %+v", doc.SystemStats)
	}
	if res.OrgNodes != 2 {
		t.Errorf("OrgNodes = %d", res.OrgNodes)
	}

	persisted, err := report.Read(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if persisted.Summary != doc.Summary {
		t.Error("persisted summary differs")
	}
}

func TestRunMissingFiles(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(nil)

	_, err := runner.Run(context.Background(), Options{TicketFile: filepath.Join(dir, "absent.xlsx")})
	if err == nil {
		t.Error("missing ticket workbook must be fatal")
	}

	reader := fakeReader{byContent: map[string][][]string{"v1": ticketRows("研发部")}}
	src := filepath.Join(dir, "tickets.xlsx")
	write(t, src, "v1")
	_, err = NewRunner(reader).Run(context.Background(), Options{TicketFile: src, OrgFile: filepath.Join(dir, "absent-org.xlsx")})
	if err == nil {
		t.Error("a configured but missing organization workbook must be fatal")
	}
}

func TestRunCancelledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tickets.xlsx")
	out := filepath.Join(dir, "out.json")
	write(t, src, "v1")

	reader := fakeReader{byContent: map[string][][]string{"v1": ticketRows("研发部")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRunner(reader).Run(ctx, Options{TicketFile: src, OutputFile: out}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("cancelled run must not write output")
	}
}

func TestRunWithoutTicketsWritesEmptyReport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tickets.xlsx")
	out := filepath.Join(dir, "ticket_data.json")
	write(t, src, "empty")

	reader := fakeReader{byContent: map[string][][]string{"empty": ticketRows()}}
	res, err := NewRunner(reader).Run(context.Background(), Options{TicketFile: src, OutputFile: out})
	if err != nil {
		t.Fatalf("a workbook without data rows must still produce a report: %v", err)
	}
	if res.Document.Summary.TotalTickets != 0 {
		t.Errorf("total_tickets = %d", res.Document.Summary.TotalTickets)
	}

	doc, err := report.Read(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if doc.Summary.DateRange != (report.DateRange{Start: report.NoData, End: report.NoData}) {
		t.Errorf("date_range = %+v, want N/A", doc.Summary.DateRange)
	}
	if doc.DeptTop10.Len() != 0 || doc.YearStats.Len() != 0 || len(doc.UnfinishedTickets) != 0 {
		t.Error("empty workbook should give empty tables")
	}
}

type refreshFixture struct {
	dir, src, backup, out string
	refresher             *Refresher
}

func newRefreshFixture(t *testing.T, timeout time.Duration) refreshFixture {
	dir := t.TempDir()
	f := refreshFixture{
		dir:    dir,
		src:    filepath.Join(dir, "tickets.xlsx"),
		backup: filepath.Join(dir, "tickets_backup.xlsx"),
		out:    filepath.Join(dir, "ticket_data.json"),
	}
	reader := fakeReader{
		byContent: map[string][][]string{
			"v1":   ticketRows("研发部"),
			"v2":   ticketRows("研发部", "市场部"),
			"slow": ticketRows("研发部", "市场部", "财务部"),
		},
		delay: 300 * time.Millisecond,
	}
	f.refresher = NewRefresher(NewRunner(reader), Options{TicketFile: f.src, OutputFile: f.out}, f.backup, timeout)
	return f
}

func (f refreshFixture) stage(t *testing.T, content string) string {
	path := filepath.Join(f.dir, "staged-"+content)
	write(t, path, content)
	return path
}

func TestReplaceSuccess(t *testing.T) {
	f := newRefreshFixture(t, time.Second)
	write(t, f.src, "v1")
	if _, err := f.refresher.Regenerate(context.Background()); err != nil {
		t.Fatalf("initial Regenerate() error = %v", err)
	}

	staged := f.stage(t, "v2")
	res, err := f.refresher.Replace(context.Background(), staged)
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if res.Document.Summary.TotalTickets != 2 {
		t.Errorf("expected 2 tickets, got %d", res.Document.Summary.TotalTickets)
	}
	if read(t, f.src) != "v2" || read(t, f.backup) != "v1" {
		t.Errorf("source=%q backup=%q", read(t, f.src), read(t, f.backup))
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged file should be consumed")
	}
	doc, err := report.Read(f.out)
	if err != nil || doc.Summary.TotalTickets != 2 {
		t.Errorf("report not refreshed: %v", err)
	}
}

func TestReplaceFailureRestores(t *testing.T) {
	f := newRefreshFixture(t, time.Second)
	write(t, f.src, "v1")
	if _, err := f.refresher.Regenerate(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := f.refresher.Replace(context.Background(), f.stage(t, "garbage")); err == nil {
		t.Fatal("expected Replace to fail on a corrupt workbook")
	}
	if read(t, f.src) != "v1" {
		t.Errorf("source not restored, got %q", read(t, f.src))
	}
	doc, _ := report.Read(f.out)
	if doc == nil || doc.Summary.TotalTickets != 1 {
		t.Error("previous report should remain in place")
	}
}

func TestReplaceTimeoutRestores(t *testing.T) {
	f := newRefreshFixture(t, 50*time.Millisecond)
	write(t, f.src, "v1")

	_, err := f.refresher.Replace(context.Background(), f.stage(t, "slow"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if read(t, f.src) != "v1" {
		t.Errorf("source not restored after timeout, got %q", read(t, f.src))
	}
	if _, err := os.Stat(f.out); !os.IsNotExist(err) {
		t.Error("timed out run must not write a report")
	}

	// The abandoned run still holds the single-writer slot until it ends.
	if _, err := f.refresher.Regenerate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while the slow run drains, got %v", err)
	}
	time.Sleep(400 * time.Millisecond)
	if _, err := f.refresher.Regenerate(context.Background()); err != nil {
		t.Errorf("Regenerate after drain: %v", err)
	}
}

func TestReplaceWithoutPreviousSource(t *testing.T) {
	f := newRefreshFixture(t, time.Second)

	if _, err := f.refresher.Replace(context.Background(), f.stage(t, "garbage")); err == nil {
		t.Fatal("expected failure")
	}
	if _, err := os.Stat(f.src); !os.IsNotExist(err) {
		t.Error("failed first upload must not leave a source workbook behind")
	}
	if _, err := os.Stat(f.backup); !os.IsNotExist(err) {
		t.Error("no backup should exist without a previous source")
	}
}
