package sla

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

var base = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func TestDueHoursIsTotal(t *testing.T) {
	policy := NewPolicy(DefaultDueHours)
	for _, dept := range domain.AllDepartments {
		for _, category := range domain.AllIssueCategories {
			if hours := policy.DueHours(dept, category); hours <= 0 {
				t.Errorf("DueHours(%s, %s) = %d", dept, category, hours)
			}
		}
	}
}

func TestDueHoursPrecedence(t *testing.T) {
	policy := NewPolicy(60)
	if got := policy.DueHours(domain.DepartmentEnvironment, domain.IssueWaste); got != 48 {
		t.Errorf("category rule: got %d, want 48", got)
	}
	if got := policy.DueHours(domain.DepartmentEnvironment, domain.IssueRoads); got != 72 {
		t.Errorf("department rule: got %d, want 72", got)
	}
	if got := policy.DueHours(domain.Department("Unknown"), domain.IssueRoads); got != 60 {
		t.Errorf("default: got %d, want 60", got)
	}
}

func TestComputeDeadline(t *testing.T) {
	policy := NewPolicy(DefaultDueHours)
	got := policy.ComputeDeadline(base, domain.DepartmentWater, domain.IssueWater)
	if want := base.Add(24 * time.Hour); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestRemainingStrictlyDecreasesAndCrossesZeroAtDeadline(t *testing.T) {
	deadline := base.Add(48 * time.Hour)
	prev := Remaining(base, deadline)
	for step := 1; step <= 96; step++ {
		now := base.Add(time.Duration(step) * time.Hour)
		got := Remaining(now, deadline)
		if got >= prev {
			t.Fatalf("remaining did not decrease at step %d: %v >= %v", step, got, prev)
		}
		prev = got
	}
	if got := Remaining(deadline, deadline); got != 0 {
		t.Fatalf("remaining at deadline = %v", got)
	}
	if Remaining(deadline.Add(-time.Nanosecond), deadline) <= 0 {
		t.Fatal("remaining just before deadline should be positive")
	}
	if Remaining(deadline.Add(time.Nanosecond), deadline) >= 0 {
		t.Fatal("remaining just after deadline should be negative")
	}
}

func TestProgressPercent(t *testing.T) {
	deadline := base.Add(100 * time.Hour)
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before creation", base.Add(-time.Hour), 0},
		{"at creation", base, 0},
		{"quarter", base.Add(25 * time.Hour), 25},
		{"at deadline", deadline, 100},
		{"overdue clamps", deadline.Add(50 * time.Hour), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercent(base, deadline, tt.now); got != tt.want {
				t.Errorf("ProgressPercent = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateOverdueOnlyWhileOpen(t *testing.T) {
	deadline := base.Add(24 * time.Hour)
	ticket := &domain.Ticket{
		Status:      domain.TicketStatusInProgress,
		CreatedAt:   base,
		SLADeadline: &deadline,
	}
	now := base.Add(30 * time.Hour)

	view, ok := Evaluate(ticket, now)
	if !ok {
		t.Fatal("expected SLA view")
	}
	if !view.Overdue || view.ProgressPercent != 100 || view.Remaining != -6*time.Hour {
		t.Fatalf("unexpected view %+v", view)
	}

	resolvedAt := base.Add(12 * time.Hour)
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &resolvedAt
	view, _ = Evaluate(ticket, now)
	if view.Overdue {
		t.Fatal("resolved ticket must not be overdue")
	}
	if view.ProgressPercent != 50 {
		t.Fatalf("resolved progress = %d, want 50", view.ProgressPercent)
	}

	if _, ok := Evaluate(&domain.Ticket{}, now); ok {
		t.Fatal("ticket without deadline has no view")
	}
}

func TestLoadPolicyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := []byte(`default_due_hours: 96
departments:
  - department: Environment
    categories:
      WASTE: 12
  - department: Urban Planning
    due_hours: 120
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	policy, err := LoadPolicy(path, DefaultDueHours)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if got := policy.DueHours(domain.DepartmentEnvironment, domain.IssueWaste); got != 12 {
		t.Errorf("WASTE = %d, want 12", got)
	}
	if got := policy.DueHours(domain.DepartmentPlanning, domain.IssueBuilding); got != 120 {
		t.Errorf("BUILDING = %d, want 120", got)
	}
	if got := policy.DueHours(domain.Department("Other"), domain.IssueOther); got != 96 {
		t.Errorf("default = %d, want 96", got)
	}
}

func TestLoadPolicyRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := []byte("departments:\n  - department: Environment\n    categories:\n      LAVA: 5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(path, DefaultDueHours); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
