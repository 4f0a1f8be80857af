// Package sla computes service-level deadlines and derives remaining time at
// read time. Nothing here mutates tickets.
package sla

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

// DefaultDueHours applies when neither a category nor a department rule exists.
const DefaultDueHours = 72

type policyKey struct {
	department domain.Department
	category   domain.IssueCategory
}

// Policy is a read-only duration table, safe for concurrent use once built.
type Policy struct {
	defaultHours    int
	departmentHours map[domain.Department]int
	categoryHours   map[policyKey]int
}

// Rule configures one department and its per-category overrides.
type Rule struct {
	Department domain.Department            `yaml:"department"`
	DueHours   int                          `yaml:"due_hours"`
	Categories map[domain.IssueCategory]int `yaml:"categories"`
}

// File is the YAML override format.
type File struct {
	DefaultDueHours int    `yaml:"default_due_hours"`
	Departments     []Rule `yaml:"departments"`
}

var builtinRules = []Rule{
	{Department: domain.DepartmentEnvironment, DueHours: 72, Categories: map[domain.IssueCategory]int{
		domain.IssueWaste: 48,
		domain.IssueNoise: 72,
	}},
	{Department: domain.DepartmentWater, DueHours: 48, Categories: map[domain.IssueCategory]int{
		domain.IssueWater:    24,
		domain.IssueSewerage: 48,
	}},
	{Department: domain.DepartmentRoads, DueHours: 120, Categories: map[domain.IssueCategory]int{
		domain.IssueRoads:        168,
		domain.IssueStreetlights: 72,
		domain.IssueDrainage:     96,
	}},
	{Department: domain.DepartmentHealth, DueHours: 48, Categories: map[domain.IssueCategory]int{
		domain.IssuePublicHealth: 24,
	}},
	{Department: domain.DepartmentPlanning, DueHours: 240},
	{Department: domain.DepartmentInspectorate, DueHours: 72, Categories: map[domain.IssueCategory]int{
		domain.IssueSecurity: 24,
	}},
	{Department: domain.DepartmentCustomerService, DueHours: 72},
}

// NewPolicy builds the built-in county policy with the given fallback.
func NewPolicy(defaultHours int) *Policy {
	p, err := newPolicy(defaultHours, builtinRules)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPolicy builds the built-in policy and layers the YAML file at path on
// top. An empty path returns the built-in policy.
func LoadPolicy(path string, defaultHours int) (*Policy, error) {
	if path == "" {
		return NewPolicy(defaultHours), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sla policy: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sla policy: %w", err)
	}
	if file.DefaultDueHours > 0 {
		defaultHours = file.DefaultDueHours
	}
	rules := append(append([]Rule(nil), builtinRules...), file.Departments...)
	return newPolicy(defaultHours, rules)
}

func newPolicy(defaultHours int, rules []Rule) (*Policy, error) {
	if defaultHours <= 0 {
		defaultHours = DefaultDueHours
	}
	p := &Policy{
		defaultHours:    defaultHours,
		departmentHours: make(map[domain.Department]int),
		categoryHours:   make(map[policyKey]int),
	}
	for _, rule := range rules {
		if !rule.Department.Valid() {
			return nil, fmt.Errorf("sla: unknown department %q", rule.Department)
		}
		if rule.DueHours < 0 {
			return nil, fmt.Errorf("sla: negative due hours for %s", rule.Department)
		}
		if rule.DueHours > 0 {
			p.departmentHours[rule.Department] = rule.DueHours
		}
		for category, hours := range rule.Categories {
			if !category.Valid() {
				return nil, fmt.Errorf("sla: unknown issue category %q", category)
			}
			if hours <= 0 {
				return nil, fmt.Errorf("sla: due hours for %s/%s must be positive", rule.Department, category)
			}
			p.categoryHours[policyKey{rule.Department, category}] = hours
		}
	}
	return p, nil
}

// DueHours returns the allowed resolution time for a department/category pair.
// It is total: unknown pairs fall back to the department and then the default.
func (p *Policy) DueHours(department domain.Department, category domain.IssueCategory) int {
	if hours, ok := p.categoryHours[policyKey{department, category}]; ok {
		return hours
	}
	if hours, ok := p.departmentHours[department]; ok {
		return hours
	}
	return p.defaultHours
}

// ComputeDeadline returns createdAt plus the due duration.
func (p *Policy) ComputeDeadline(createdAt time.Time, department domain.Department, category domain.IssueCategory) time.Time {
	return createdAt.Add(time.Duration(p.DueHours(department, category)) * time.Hour)
}

// Remaining returns the signed time left; negative means overdue by that much.
func Remaining(now, deadline time.Time) time.Duration {
	return deadline.Sub(now)
}

// ProgressPercent returns elapsed/allowed as an integer clamped to 0..100.
func ProgressPercent(createdAt, deadline, now time.Time) int {
	total := deadline.Sub(createdAt)
	if total <= 0 {
		if now.Before(deadline) {
			return 0
		}
		return 100
	}
	pct := math.Floor(float64(now.Sub(createdAt)) / float64(total) * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// View is the read-time SLA state of a ticket.
type View struct {
	Deadline        time.Time     `json:"deadline"`
	Remaining       time.Duration `json:"remaining"`
	ProgressPercent int           `json:"progress_percent"`
	Overdue         bool          `json:"overdue"`
}

// Evaluate derives the SLA view of t at now. ok is false for tickets without a deadline.
func Evaluate(t *domain.Ticket, now time.Time) (View, bool) {
	if t == nil || t.SLADeadline == nil {
		return View{}, false
	}
	deadline := *t.SLADeadline
	reference := now
	// A resolved ticket's clock stops at resolution.
	if t.Status == domain.TicketStatusResolved && t.ResolvedAt != nil {
		reference = *t.ResolvedAt
	}
	remaining := Remaining(reference, deadline)
	return View{
		Deadline:        deadline,
		Remaining:       remaining,
		ProgressPercent: ProgressPercent(t.CreatedAt, deadline, reference),
		Overdue:         IsOverdue(t, now),
	}, true
}

// IsOverdue reports whether an open ticket has passed its deadline.
func IsOverdue(t *domain.Ticket, now time.Time) bool {
	if t == nil || t.SLADeadline == nil || !t.IsOpen() {
		return false
	}
	return Remaining(now, *t.SLADeadline) < 0
}
