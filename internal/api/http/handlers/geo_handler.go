package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nairobi-county/county-tickets/internal/api/dto"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/geo"
	"github.com/nairobi-county/county-tickets/internal/routing"
	"github.com/nairobi-county/county-tickets/internal/sla"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

// GeoHandler serves ward lookup and routing previews for the submission form.
type GeoHandler struct {
	resolver *geo.Resolver
	router   *routing.Router
	policy   *sla.Policy
}

// NewGeoHandler constructs handler.
func NewGeoHandler(resolver *geo.Resolver, router *routing.Router, policy *sla.Policy) *GeoHandler {
	return &GeoHandler{resolver: resolver, router: router, policy: policy}
}

// Resolve GET /geo/resolve?lat=&lng=.
func (h *GeoHandler) Resolve(c *fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return apperrors.NewValidationError("lat and lng must be numbers", map[string]any{
			"lat": c.Query("lat"),
			"lng": c.Query("lng"),
		})
	}
	res, err := h.resolver.Resolve(lat, lng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// ListWards GET /wards. Sub-counties and their wards are listed in lexical order.
func (h *GeoHandler) ListWards(c *fiber.Ctx) error {
	index := h.resolver.Index()
	groups := make([]dto.SubCountyResponse, 0, len(index.SubCounties()))
	pos := make(map[string]int)
	for _, name := range index.SubCounties() {
		pos[name] = len(groups)
		groups = append(groups, dto.SubCountyResponse{Name: name, Wards: []domain.Ward{}})
	}
	for _, ward := range index.Wards() {
		i, ok := pos[ward.SubCounty]
		if !ok {
			continue
		}
		groups[i].Wards = append(groups[i].Wards, ward)
	}
	return c.JSON(fiber.Map{"data": groups})
}

// GetWard GET /wards/:code.
func (h *GeoHandler) GetWard(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	ward, ok := h.resolver.Index().Lookup(code)
	if !ok {
		return apperrors.NewNotFound("ward", map[string]any{"code": code})
	}
	return c.JSON(fiber.Map{"data": ward})
}

// PreviewRoute GET /routing/:issueCategory?override=.
func (h *GeoHandler) PreviewRoute(c *fiber.Ctx) error {
	category := domain.IssueCategory(strings.ToUpper(strings.TrimSpace(c.Params("issueCategory"))))
	if !category.Valid() {
		return apperrors.NewValidationError("unknown issue category", map[string]any{"issue_category": string(category)})
	}
	route, err := h.router.RouteWithOverride(category, domain.Department(c.Query("override")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RouteResponse{
		IssueCategory: category,
		Department:    route.Department,
		Source:        route.Source,
		DueHours:      h.policy.DueHours(route.Department, category),
	}})
}
