package stats

import (
	"ticket-stats/internal/tickets"
)

// UnfinishedTicket is the detail record of a ticket whose process has not ended.
// Keys follow the source workbook's column titles.
type UnfinishedTicket struct {
	Serial        string `json:"流水号"`
	Content       string `json:"需求内容"`
	Submitter     string `json:"申请人"`
	Department    string `json:"所在部门"`
	TopDepartment string `json:"一级部门"`
	Created       string `json:"创建日期,omitempty"`
	Type          string `json:"工单类型"`
	AuditStatus   string `json:"审核状态"`
}

// Unfinished extracts the unfinished tickets in source order. The result is never nil.
func Unfinished(items []tickets.Ticket) []UnfinishedTicket {
	out := []UnfinishedTicket{}
	for _, t := range items {
		if !t.IsUnfinished() {
			continue
		}
		out = append(out, UnfinishedTicket{
			Serial:        t.Serial,
			Content:       t.Content,
			Submitter:     t.Submitter,
			Department:    t.Department,
			TopDepartment: t.TopDepartment,
			Created:       t.CreatedISO(),
			Type:          t.Type,
			AuditStatus:   t.AuditStatus,
		})
	}
	return out
}
