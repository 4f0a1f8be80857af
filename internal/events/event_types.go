package events

import (
	"time"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketRemarkAdded   EventType = "ticket_remark_added"
	EventTicketRated         EventType = "ticket_rated"
	EventTicketSLARecomputed EventType = "ticket_sla_recomputed"
)

// Event represents a domain event emitted after a ticket write succeeds.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  string       `json:"ticket_id"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	WardCode         *string                 `json:"ward_code,omitempty"`
	Department       domain.Department       `json:"department"`
	DepartmentSource domain.DepartmentSource `json:"department_source"`
	IssueCategory    domain.IssueCategory    `json:"issue_category,omitempty"`
	SLADeadline      *time.Time              `json:"sla_deadline,omitempty"`
	Title            string                  `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo    string            `json:"assigned_to"`
	OldDepartment domain.Department `json:"old_department"`
	NewDepartment domain.Department `json:"new_department"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus   `json:"old_status"`
	NewStatus domain.TicketStatus   `json:"new_status"`
	Action    domain.WorkflowAction `json:"action"`
	Note      string                `json:"note,omitempty"`
}

// TicketRemarkAddedPayload payload.
type TicketRemarkAddedPayload struct {
	ByRole      domain.ActorRole `json:"by_role"`
	TextPreview string           `json:"text_preview"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Rating int `json:"rating"`
	Cycle  int `json:"cycle"`
}

// TicketSLARecomputedPayload payload.
type TicketSLARecomputedPayload struct {
	OldDeadline *time.Time `json:"old_deadline,omitempty"`
	NewDeadline time.Time  `json:"new_deadline"`
}
