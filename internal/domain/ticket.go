package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusEscalated  TicketStatus = "escalated"
	// TicketStatusReopened is never stored. Reopened tickets are in_progress
	// with a non-zero ReopenCount; the value exists for filtering.
	TicketStatusReopened TicketStatus = "reopened"
	TicketStatusRejected TicketStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusEscalated, TicketStatusReopened, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Contact carries optional reporter or beneficiary details.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Ticket is the aggregate for citizen submissions.
type Ticket struct {
	ID                  string
	TicketID            string
	Version             int64
	Category            Category
	Intent              Intent
	IssueCategory       IssueCategory
	Title               string
	Description         string
	VoiceRecordingRef   string
	Status              TicketStatus
	Priority            TicketPriority
	WardCode            *string
	WardName            string
	SubCounty           string
	Zone                string
	Coordinates         *Coordinate
	LocationText        string
	Photos              []string
	Reporter            *Contact
	Beneficiary         *Contact
	AssignedDepartment  Department
	DepartmentSource    DepartmentSource
	AssignedTo          *string
	CreatedBy           Actor
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SLADeadline         *time.Time
	ResolvedAt          *time.Time
	ReopenCount         int
	SatisfactionRating  *int
	SatisfactionHistory []SatisfactionRecord
	History             []WorkflowHistoryItem
	Remarks             []Remark
}

// Clone returns a deep copy so callers can mutate without aliasing the stored record.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	c.WardCode = cloneString(t.WardCode)
	c.AssignedTo = cloneString(t.AssignedTo)
	c.SLADeadline = cloneTime(t.SLADeadline)
	c.ResolvedAt = cloneTime(t.ResolvedAt)
	if t.Coordinates != nil {
		coord := *t.Coordinates
		c.Coordinates = &coord
	}
	if t.Reporter != nil {
		reporter := *t.Reporter
		c.Reporter = &reporter
	}
	if t.Beneficiary != nil {
		beneficiary := *t.Beneficiary
		c.Beneficiary = &beneficiary
	}
	if t.SatisfactionRating != nil {
		rating := *t.SatisfactionRating
		c.SatisfactionRating = &rating
	}
	c.Photos = append([]string(nil), t.Photos...)
	c.SatisfactionHistory = append([]SatisfactionRecord(nil), t.SatisfactionHistory...)
	c.History = append([]WorkflowHistoryItem(nil), t.History...)
	c.Remarks = make([]Remark, len(t.Remarks))
	for i, remark := range t.Remarks {
		remark.Attachments = append([]string(nil), remark.Attachments...)
		c.Remarks[i] = remark
	}
	return &c
}

// IsOpen reports whether the ticket still awaits resolution.
func (t *Ticket) IsOpen() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusRejected
}

// IsReopened reports whether the ticket is back in work after a resolution.
func (t *Ticket) IsReopened() bool {
	return t.Status == TicketStatusInProgress && t.ReopenCount > 0
}

// CurrentCycleRating returns the rating given in the current resolution cycle.
// A rating carried over from before a reopen does not count.
func (t *Ticket) CurrentCycleRating() (int, bool) {
	if t.Status != TicketStatusResolved || len(t.SatisfactionHistory) == 0 {
		return 0, false
	}
	last := t.SatisfactionHistory[len(t.SatisfactionHistory)-1]
	if last.Cycle != t.ReopenCount {
		return 0, false
	}
	return last.Rating, true
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
