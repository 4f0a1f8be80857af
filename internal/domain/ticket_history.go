package domain

import "time"

// WorkflowAction captures what a history entry records.
type WorkflowAction string

const (
	ActionCreate       WorkflowAction = "CREATE"
	ActionAssign       WorkflowAction = "ASSIGN"
	ActionInProgress   WorkflowAction = "IN_PROGRESS"
	ActionResolve      WorkflowAction = "RESOLVE"
	ActionEscalate     WorkflowAction = "ESCALATE"
	ActionReopen       WorkflowAction = "REOPEN"
	ActionReject       WorkflowAction = "REJECT"
	ActionSLARecompute WorkflowAction = "SLA_RECOMPUTE"
)

// WorkflowHistoryItem is an immutable audit trail entry.
type WorkflowHistoryItem struct {
	Seq         int            `json:"seq"`
	Action      WorkflowAction `json:"action"`
	PerformedBy Actor          `json:"performed_by"`
	Timestamp   time.Time      `json:"timestamp"`
	Note        string         `json:"note,omitempty"`
}

// Remark is a free-text comment on a ticket thread.
type Remark struct {
	Seq         int       `json:"seq"`
	By          string    `json:"by"`
	ByRole      ActorRole `json:"by_role"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Attachments []string  `json:"attachments,omitempty"`
}

// SatisfactionRecord keeps every rating given, one cycle per resolution.
type SatisfactionRecord struct {
	Rating  int       `json:"rating"`
	Cycle   int       `json:"cycle"`
	RatedAt time.Time `json:"rated_at"`
}
