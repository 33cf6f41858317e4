package workbook

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	err := Write(path,
		Sheet{Name: "工单", Rows: [][]any{
			{"流水号", "所在部门", "创建日期"},
			{"  T1 ", " 研发部(分公司)  ", 44936},
			{"T2", "市场部", "2024-05-06"},
		}},
		Sheet{Name: "备注", Rows: [][]any{{"ignored"}}},
	)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rows, err := ExcelReader{}.ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	want := [][]string{
		{"流水号", "所在部门", "创建日期"},
		{"T1", "研发部(分公司)", "44936"},
		{"T2", "市场部", "2024-05-06"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadRows() = %q, want %q", rows, want)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"工单", "备注"}) {
		t.Errorf("sheets = %v", got)
	}
}

func TestReadRowsErrors(t *testing.T) {
	if _, err := (ExcelReader{}).ReadRows(filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Error("missing workbook should fail")
	}
	if err := Write(filepath.Join(t.TempDir(), "none.xlsx")); !errors.Is(err, ErrNoSheets) {
		t.Errorf("Write without sheets = %v, want ErrNoSheets", err)
	}
}
