package dto

import (
	"time"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category          domain.Category       `json:"category"`
	Intent            domain.Intent         `json:"intent"`
	IssueCategory     domain.IssueCategory  `json:"issue_category"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	VoiceRecordingRef string                `json:"voice_recording_ref"`
	Priority          domain.TicketPriority `json:"priority"`
	Coordinates       *domain.Coordinate    `json:"coordinates"`
	WardCode          string                `json:"ward_code"`
	LocationText      string                `json:"location_text"`
	Photos            []string              `json:"photos"`
	Reporter          *domain.Contact       `json:"reporter"`
	Beneficiary       *domain.Contact       `json:"beneficiary"`
	Department        domain.Department     `json:"department"`
}

// TransitionRequest is the body of status-only transitions. Version, when
// present, must match the stored ticket.
type TransitionRequest struct {
	Version *int64 `json:"version"`
	Note    string `json:"note"`
	Reason  string `json:"reason"`
}

// AssignRequest payload.
type AssignRequest struct {
	Version    *int64            `json:"version"`
	Assignee   string            `json:"assignee"`
	Department domain.Department `json:"department"`
}

// RatingRequest payload.
type RatingRequest struct {
	Version *int64 `json:"version"`
	Rating  int    `json:"rating"`
}

// RemarkRequest payload.
type RemarkRequest struct {
	Version     *int64   `json:"version"`
	Text        string   `json:"text"`
	Attachments []string `json:"attachments"`
}

// SLAView is the deadline state computed at response time.
type SLAView struct {
	Deadline         time.Time `json:"deadline"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Remaining        string    `json:"remaining"`
	ProgressPercent  int       `json:"progress_percent"`
	Overdue          bool      `json:"overdue"`
}

// TicketSummary is the listing row.
type TicketSummary struct {
	ID                 string                `json:"id"`
	TicketID           string                `json:"ticket_id"`
	Version            int64                 `json:"version"`
	Category           domain.Category       `json:"category"`
	IssueCategory      domain.IssueCategory  `json:"issue_category,omitempty"`
	Title              string                `json:"title"`
	Status             domain.TicketStatus   `json:"status"`
	Reopened           bool                  `json:"reopened"`
	Priority           domain.TicketPriority `json:"priority"`
	WardCode           *string               `json:"ward_code"`
	WardName           string                `json:"ward_name,omitempty"`
	AssignedDepartment domain.Department     `json:"assigned_department"`
	AssignedTo         *string               `json:"assigned_to"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	SLA                *SLAView              `json:"sla,omitempty"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Intent              domain.Intent                `json:"intent,omitempty"`
	Description         string                       `json:"description,omitempty"`
	VoiceRecordingRef   string                       `json:"voice_recording_ref,omitempty"`
	SubCounty           string                       `json:"sub_county,omitempty"`
	Zone                string                       `json:"zone,omitempty"`
	Coordinates         *domain.Coordinate           `json:"coordinates"`
	LocationText        string                       `json:"location_text,omitempty"`
	Photos              []string                     `json:"photos"`
	Reporter            *domain.Contact              `json:"reporter,omitempty"`
	Beneficiary         *domain.Contact              `json:"beneficiary,omitempty"`
	DepartmentSource    domain.DepartmentSource      `json:"department_source"`
	CreatedBy           domain.Actor                 `json:"created_by"`
	SLADeadline         *time.Time                   `json:"sla_deadline"`
	ResolvedAt          *time.Time                   `json:"resolved_at"`
	ReopenCount         int                          `json:"reopen_count"`
	SatisfactionRating  *int                         `json:"satisfaction_rating"`
	CurrentRating       *int                         `json:"current_cycle_rating"`
	SatisfactionHistory []domain.SatisfactionRecord  `json:"satisfaction_history"`
	History             []domain.WorkflowHistoryItem `json:"history"`
	Remarks             []domain.Remark              `json:"remarks"`
}
