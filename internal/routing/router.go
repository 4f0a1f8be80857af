// Package routing maps issue categories to the department responsible for them.
package routing

import (
	"fmt"

	"github.com/nairobi-county/county-tickets/internal/domain"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

var departmentByCategory = map[domain.IssueCategory]domain.Department{
	domain.IssueWaste:        domain.DepartmentEnvironment,
	domain.IssueNoise:        domain.DepartmentEnvironment,
	domain.IssueWater:        domain.DepartmentWater,
	domain.IssueSewerage:     domain.DepartmentWater,
	domain.IssueRoads:        domain.DepartmentRoads,
	domain.IssueStreetlights: domain.DepartmentRoads,
	domain.IssueDrainage:     domain.DepartmentRoads,
	domain.IssuePublicHealth: domain.DepartmentHealth,
	domain.IssueBuilding:     domain.DepartmentPlanning,
	domain.IssueHawking:      domain.DepartmentInspectorate,
	domain.IssueSecurity:     domain.DepartmentInspectorate,
	domain.IssueOther:        domain.DepartmentCustomerService,
}

// The table must cover the whole enumeration; a gap fails at startup rather
// than on the first ticket that hits it.
func init() {
	if err := checkCoverage(departmentByCategory); err != nil {
		panic(err)
	}
}

func checkCoverage(table map[domain.IssueCategory]domain.Department) error {
	for _, category := range domain.AllIssueCategories {
		dept, ok := table[category]
		if !ok {
			return fmt.Errorf("routing: issue category %s has no department", category)
		}
		if !dept.Valid() {
			return fmt.Errorf("routing: issue category %s maps to unknown department %q", category, dept)
		}
	}
	return nil
}

// Route is a routing decision together with where it came from.
type Route struct {
	Department domain.Department       `json:"department"`
	Source     domain.DepartmentSource `json:"source"`
}

// Router assigns departments to issue categories. It has no state.
type Router struct{}

// NewRouter returns a Router.
func NewRouter() *Router {
	return &Router{}
}

// RouteAuto returns the department for category.
func (r *Router) RouteAuto(category domain.IssueCategory) (domain.Department, error) {
	dept, ok := departmentByCategory[category]
	if !ok {
		return "", apperrors.NewRoutingError(string(category))
	}
	return dept, nil
}

// RouteWithOverride applies an explicit department choice. The source is AUTO
// when the choice matches the automatic route, USER_OVERRIDE otherwise. An
// empty choice is treated as no override.
func (r *Router) RouteWithOverride(category domain.IssueCategory, choice domain.Department) (Route, error) {
	auto, err := r.RouteAuto(category)
	if err != nil {
		return Route{}, err
	}
	if choice == "" || choice == auto {
		return Route{Department: auto, Source: domain.DepartmentSourceAuto}, nil
	}
	if !choice.Valid() {
		return Route{}, apperrors.NewValidationError("unknown department", map[string]any{"department": string(choice)})
	}
	return Route{Department: choice, Source: domain.DepartmentSourceUserOverride}, nil
}
