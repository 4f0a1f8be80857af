package domain

import (
	"testing"
	"time"
)

func TestCloneDoesNotAlias(t *testing.T) {
	ward := "KILIMANI"
	deadline := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	original := &Ticket{
		WardCode:    &ward,
		SLADeadline: &deadline,
		Photos:      []string{"a.jpg"},
		History:     []WorkflowHistoryItem{{Seq: 1, Action: ActionCreate}},
		Remarks:     []Remark{{Seq: 1, Text: "hi", Attachments: []string{"x.png"}}},
	}

	clone := original.Clone()
	*clone.WardCode = "KAREN"
	*clone.SLADeadline = deadline.Add(time.Hour)
	clone.Photos[0] = "b.jpg"
	clone.History = append(clone.History, WorkflowHistoryItem{Seq: 2})
	clone.Remarks[0].Attachments[0] = "y.png"

	if *original.WardCode != "KILIMANI" {
		t.Errorf("ward code aliased: %s", *original.WardCode)
	}
	if !original.SLADeadline.Equal(deadline) {
		t.Errorf("deadline aliased")
	}
	if original.Photos[0] != "a.jpg" {
		t.Errorf("photos aliased")
	}
	if len(original.History) != 1 {
		t.Errorf("history aliased, len=%d", len(original.History))
	}
	if original.Remarks[0].Attachments[0] != "x.png" {
		t.Errorf("remark attachments aliased")
	}
}

func TestCurrentCycleRating(t *testing.T) {
	ticket := &Ticket{
		Status:              TicketStatusResolved,
		SatisfactionHistory: []SatisfactionRecord{{Rating: 5, Cycle: 0}},
	}
	if rating, ok := ticket.CurrentCycleRating(); !ok || rating != 5 {
		t.Fatalf("expected rating 5 in cycle 0, got %d %v", rating, ok)
	}

	ticket.ReopenCount = 1
	if _, ok := ticket.CurrentCycleRating(); ok {
		t.Fatal("rating from a previous cycle must not count")
	}

	ticket.Status = TicketStatusInProgress
	if !ticket.IsReopened() {
		t.Fatal("in_progress with reopen count should be reopened")
	}
}
