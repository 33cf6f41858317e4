package tickets

import (
	"time"
)

// Business markers found in the source workbook.
const (
	CheckedMarker    = "勾选"
	DraftStatus      = "草稿"
	UnfinishedStatus = "未结束"
)

// Column titles of the ticket workbook, in positional order.
const (
	ColSerial     = "流水号"
	ColSubmitter  = "申请人"
	ColDepartment = "所在部门"
	ColCreated    = "创建日期"
	ColType       = "工单类型"
	ColSubtype    = "工单类型子类型"
	ColOA         = "OA系统"
	ColMarketing  = "营销平台"
	ColU8C        = "U8C"
	ColContent    = "需求内容"
	ColAudit      = "审核状态"
	ColProcess    = "流程状态"
)

// Columns lists the canonical names assigned positionally to every data row.
var Columns = []string{
	ColSerial, ColSubmitter, ColDepartment, ColCreated, ColType, ColSubtype,
	ColOA, ColMarketing, ColU8C, ColContent, ColAudit, ColProcess,
}

// Ticket is one cleaned row of the ticket workbook.
type Ticket struct {
	Serial    string
	Submitter string

	// RawDepartment is the department cell as found in the workbook.
	RawDepartment string
	// Department is RawDepartment with parenthetical groups stripped.
	Department string
	// TopDepartment is the top-level organizational ancestor of Department.
	TopDepartment string

	Created *time.Time
	Year    int    // 0 when Created is nil
	Month   string // "2006-01" bucket, empty when Created is nil

	Type    string
	Subtype string

	OAFlag        string
	MarketingFlag string
	U8CFlag       string

	Content       string
	AuditStatus   string
	ProcessStatus string
}

// HasDate reports whether the creation date could be parsed.
func (t Ticket) HasDate() bool {
	return t.Created != nil
}

// IsDraft reports whether the ticket is still in draft audit state.
func (t Ticket) IsDraft() bool {
	return t.AuditStatus == DraftStatus
}

// IsUnfinished reports whether the ticket's process has not ended.
func (t Ticket) IsUnfinished() bool {
	return t.ProcessStatus == UnfinishedStatus
}

// CreatedISO formats the creation date as YYYY-MM-DD, or "" when unknown.
func (t Ticket) CreatedISO() string {
	if t.Created == nil {
		return ""
	}
	return t.Created.Format(time.DateOnly)
}

// Checked reports whether a system flag cell carries the checked marker.
func Checked(flag string) bool {
	return flag == CheckedMarker
}
