package repository

import "github.com/happycall-qa/happycall/internal/datastore/entities"

// SubmissionFilter selects rows for the admin dashboard list.
type SubmissionFilter string

const (
	SubmissionFilterAll      SubmissionFilter = "all"
	SubmissionFilterAbnormal SubmissionFilter = "abnormal"
	SubmissionFilterPending  SubmissionFilter = "pending"
	SubmissionFilterResolved SubmissionFilter = "resolved"
)

// ParseSubmissionFilter maps a query value to a filter. Unknown values mean all.
func ParseSubmissionFilter(v string) SubmissionFilter {
	switch f := SubmissionFilter(v); f {
	case SubmissionFilterAbnormal, SubmissionFilterPending, SubmissionFilterResolved:
		return f
	default:
		return SubmissionFilterAll
	}
}

// SubmissionStats are independent full-table counts. Normal+Abnormal and
// Pending+Resolved each equal Total.
type SubmissionStats struct {
	Total    int64
	Normal   int64
	Abnormal int64
	Pending  int64
	Resolved int64
}

// CustomerFilter narrows a customer listing. Zero values match everything.
type CustomerFilter struct {
	CallStatus entities.CallStatus
	AgentID    *uint
}
