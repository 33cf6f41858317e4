package engine

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"ticket-stats/internal/tickets"
	"ticket-stats/internal/workbook"
)

// GeneratorConfig controls the shape of the generated workbooks.
type GeneratorConfig struct {
	Count int
	// Year is the later of the two years the tickets span.
	Year int
	Seed int64
	// SerialDates writes every other date as an Excel serial number instead of text.
	SerialDates bool
}

// OrgUnit is one row of the generated organization workbook.
type OrgUnit struct {
	Name   string
	Code   string
	Parent string
}

// Units is the generated organization: three roots, their departments and one nested team.
var Units = []OrgUnit{
	{"总部", "01", "nan"},
	{"财务部", "0101", "01"},
	{"人事部", "0102", "01"},
	{"技术中心", "02", "nan"},
	{"研发部", "0201", "02"},
	{"测试部", "0202", "02"},
	{"运维部", "0203", "02"},
	{"前端组", "020101", "0201"},
	{"营销中心", "03", ""},
	{"市场部", "0301", "03"},
	{"销售部", "0302", "03"},
}

var (
	submitters = []string{"张伟", "王芳", "李娜", "刘洋", "陈静", "杨磊", "赵敏", "黄强"}
	types      = map[string][]string{
		"功能需求": {"新增功能", "功能变更"},
		"系统优化": {"性能优化", "界面优化"},
		"数据处理": {"数据导出", "数据修复"},
		"权限申请": {""},
	}
	typeNames = []string{"功能需求", "系统优化", "数据处理", "权限申请"}
	suffixes  = []string{"(分公司)", "(华东)", "(临时)"}
	excelBase = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

// Generate builds the ticket and organization sheets.
func Generate(cfg GeneratorConfig) (ticketSheet, orgSheet workbook.Sheet) {
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	depts := make([]string, 0, len(Units))
	for _, u := range Units {
		depts = append(depts, u.Name)
	}

	header := make([]any, len(tickets.Columns))
	for i, c := range tickets.Columns {
		header[i] = c
	}
	rows := [][]any{
		header,
		{fmt.Sprintf("需求工单统计表 %d-%d", cfg.Year-1, cfg.Year)},
		{"说明: 每行一个工单, 部门填写所在部门全称", "", "填写部门"},
	}

	start := time.Date(cfg.Year-1, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < cfg.Count; i++ {
		dept := depts[rng.Intn(len(depts))]
		switch p := rng.Float64(); {
		case p < 0.15:
			dept += suffixes[rng.Intn(len(suffixes))]
		case p < 0.18:
			dept = "外部合作单位"
		case p < 0.20:
			dept = ""
		}

		created := start.AddDate(0, 0, rng.Intn(730))
		var date any = created.Format(time.DateOnly)
		switch {
		case rng.Float64() < 0.03:
			date = ""
		case cfg.SerialDates && i%2 == 1:
			date = created.Sub(excelBase).Hours() / 24
		}

		typ := typeNames[rng.Intn(len(typeNames))]
		subs := types[typ]

		audit := "已审核"
		if rng.Float64() < 0.1 {
			audit = tickets.DraftStatus
		}
		process := "已结束"
		if rng.Float64() < 0.25 {
			process = tickets.UnfinishedStatus
		}

		rows = append(rows, []any{
			fmt.Sprintf("GD%d%05d", cfg.Year, i+1),
			submitters[rng.Intn(len(submitters))],
			dept,
			date,
			typ,
			subs[rng.Intn(len(subs))],
			flag(rng, 0.4),
			flag(rng, 0.25),
			flag(rng, 0.15),
			fmt.Sprintf("%s: %s", typ, dept),
			audit,
			process,
		})
	}

	orgRows := [][]any{{"Name", "Code", "PDepartmentCode"}, {"部门名称", "部门编码", "上级部门编码"}}
	for _, u := range Units {
		orgRows = append(orgRows, []any{u.Name, u.Code, u.Parent})
	}

	return workbook.Sheet{Name: "工单", Rows: rows}, workbook.Sheet{Name: "组织", Rows: orgRows}
}

func flag(rng *rand.Rand, p float64) string {
	if rng.Float64() < p {
		return tickets.CheckedMarker
	}
	return ""
}

// Save writes both workbooks into outDir under the given file names.
func Save(outDir, ticketFile, orgFile string, ticketSheet, orgSheet workbook.Sheet) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := workbook.Write(filepath.Join(outDir, ticketFile), ticketSheet); err != nil {
		return fmt.Errorf("failed to write ticket workbook: %w", err)
	}
	if err := workbook.Write(filepath.Join(outDir, orgFile), orgSheet); err != nil {
		return fmt.Errorf("failed to write organization workbook: %w", err)
	}
	return nil
}
