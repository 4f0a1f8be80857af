package dto

import (
	"github.com/nairobi-county/county-tickets/internal/domain"
)

// SubCountyResponse groups wards for the location picker.
type SubCountyResponse struct {
	Name  string        `json:"name"`
	Wards []domain.Ward `json:"wards"`
}

// RouteResponse answers a routing preview.
type RouteResponse struct {
	IssueCategory domain.IssueCategory    `json:"issue_category"`
	Department    domain.Department       `json:"department"`
	Source        domain.DepartmentSource `json:"source"`
	DueHours      int                     `json:"due_hours"`
}

// PreferenceRequest payload.
type PreferenceRequest struct {
	Value string `json:"value"`
}
