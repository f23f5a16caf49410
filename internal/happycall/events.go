package happycall

import (
	"context"
	"time"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// SubmissionEvent describes a newly stored checklist.
type SubmissionEvent struct {
	SubmissionID  uint                 `json:"submission_id"`
	CustomerID    uint                 `json:"customer_id"`
	CustomerName  string               `json:"customer_name"`
	AgentUsername string               `json:"agent_username"`
	FinalStatus   entities.FinalStatus `json:"final_status"`
	HasRecording  bool                 `json:"has_recording"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Abnormal reports whether the submission failed any item.
func (e SubmissionEvent) Abnormal() bool {
	return e.FinalStatus == entities.FinalStatusAbnormal
}

// Notifier receives submission events. Implementations must not block the caller.
type Notifier interface {
	NotifySubmission(ctx context.Context, event SubmissionEvent)
}

// Metrics records domain counters.
type Metrics interface {
	RecordSubmission(finalStatus entities.FinalStatus)
	RecordDenial(reason DenyReason)
}

type noopNotifier struct{}

func (noopNotifier) NotifySubmission(context.Context, SubmissionEvent) {}

type noopMetrics struct{}

func (noopMetrics) RecordSubmission(entities.FinalStatus) {}
func (noopMetrics) RecordDenial(DenyReason)               {}
