package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nairobi-county/county-tickets/internal/api/dto"
	"github.com/nairobi-county/county-tickets/internal/auth"
	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/service"
	"github.com/nairobi-county/county-tickets/internal/sla"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketsHandler manages citizen-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	query   *service.QueryService
	clock   clock.Clock
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, query *service.QueryService, clk clock.Clock) *TicketsHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketsHandler{service: ticketService, query: query, clock: clk}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	// Unknown categories from the wire are input errors, not routing defects.
	if req.IssueCategory != "" && !req.IssueCategory.Valid() {
		return apperrors.NewValidationError("unknown issue category", map[string]any{"issue_category": string(req.IssueCategory)})
	}

	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		Category:           req.Category,
		Intent:             req.Intent,
		IssueCategory:      req.IssueCategory,
		Title:              req.Title,
		Description:        req.Description,
		VoiceRecordingRef:  req.VoiceRecordingRef,
		Priority:           req.Priority,
		Coordinates:        req.Coordinates,
		WardCode:           req.WardCode,
		LocationText:       req.LocationText,
		Photos:             req.Photos,
		Reporter:           req.Reporter,
		Beneficiary:        req.Beneficiary,
		DepartmentOverride: req.Department,
		CreatedBy:          auth.ActorFromContext(c),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.detail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	tickets, err := h.query.List(c.UserContext(), service.TicketListFilter{
		Status:        c.Query("status"),
		SearchText:    c.Query("q"),
		SortField:     service.SortField(c.Query("sort")),
		SortDirection: service.SortDirection(strings.ToLower(c.Query("direction"))),
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	})
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.summary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items, "page": page, "page_size": pageSize})
}

// GetTicket GET /tickets/:id. The id may be the internal id or the public ticket code.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := loadTicket(c, h.service, nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.detail(ticket)})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := loadTicket(c, h.service, req.Version)
	if err != nil {
		return err
	}
	updated, err := h.service.Reopen(c.UserContext(), ticket, auth.ActorFromContext(c), firstNonEmpty(req.Reason, req.Note))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.detail(updated)})
}

// RateTicket POST /tickets/:id/rating.
func (h *TicketsHandler) RateTicket(c *fiber.Ctx) error {
	var req dto.RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := loadTicket(c, h.service, req.Version)
	if err != nil {
		return err
	}
	updated, err := h.service.RateSatisfaction(c.UserContext(), ticket, auth.ActorFromContext(c), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.detail(updated)})
}

// AddRemark POST /tickets/:id/remarks. Citizens and staff share this route.
func (h *TicketsHandler) AddRemark(c *fiber.Ctx) error {
	var req dto.RemarkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := loadTicket(c, h.service, req.Version)
	if err != nil {
		return err
	}
	updated, err := h.service.AddRemark(c.UserContext(), ticket, auth.ActorFromContext(c), req.Text, req.Attachments)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.detail(updated)})
}

func (h *TicketsHandler) summary(ticket *domain.Ticket) dto.TicketSummary {
	return ticketSummary(ticket, h.clock)
}

func (h *TicketsHandler) detail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return ticketDetail(ticket, h.clock)
}

// loadTicket fetches the ticket named by :id. A client-supplied version that
// differs from the stored one is stale: the status the client acted on may
// no longer hold, so no transition check runs against the newer state.
func loadTicket(c *fiber.Ctx, tickets *service.TicketService, version *int64) (*domain.Ticket, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	var (
		ticket *domain.Ticket
		err    error
	)
	if looksLikeTicketCode(id) {
		ticket, err = tickets.GetByTicketID(c.UserContext(), id)
	} else {
		ticket, err = tickets.Get(c.UserContext(), id)
	}
	if err != nil {
		return nil, err
	}
	if version != nil && *version != ticket.Version {
		return nil, apperrors.NewStaleState(ticket.ID, *version)
	}
	return ticket, nil
}

// looksLikeTicketCode matches PREFIX-YYYY-NNNNNN.
func looksLikeTicketCode(id string) bool {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] == "" || len(parts[1]) != 4 || len(parts[2]) != 6 {
		return false
	}
	for _, part := range parts[1:] {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func slaView(ticket *domain.Ticket, clk clock.Clock) *dto.SLAView {
	view, ok := sla.Evaluate(ticket, clk.Now())
	if !ok {
		return nil
	}
	return &dto.SLAView{
		Deadline:         view.Deadline,
		RemainingSeconds: int64(view.Remaining.Seconds()),
		Remaining:        view.Remaining.String(),
		ProgressPercent:  view.ProgressPercent,
		Overdue:          view.Overdue,
	}
}

func ticketSummary(ticket *domain.Ticket, clk clock.Clock) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                 ticket.ID,
		TicketID:           ticket.TicketID,
		Version:            ticket.Version,
		Category:           ticket.Category,
		IssueCategory:      ticket.IssueCategory,
		Title:              ticket.Title,
		Status:             ticket.Status,
		Reopened:           ticket.IsReopened(),
		Priority:           ticket.Priority,
		WardCode:           ticket.WardCode,
		WardName:           ticket.WardName,
		AssignedDepartment: ticket.AssignedDepartment,
		AssignedTo:         ticket.AssignedTo,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
		SLA:                slaView(ticket, clk),
	}
}

func ticketDetail(ticket *domain.Ticket, clk clock.Clock) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketSummary:       ticketSummary(ticket, clk),
		Intent:              ticket.Intent,
		Description:         ticket.Description,
		VoiceRecordingRef:   ticket.VoiceRecordingRef,
		SubCounty:           ticket.SubCounty,
		Zone:                ticket.Zone,
		Coordinates:         ticket.Coordinates,
		LocationText:        ticket.LocationText,
		Photos:              nonNilStrings(ticket.Photos),
		Reporter:            ticket.Reporter,
		Beneficiary:         ticket.Beneficiary,
		DepartmentSource:    ticket.DepartmentSource,
		CreatedBy:           ticket.CreatedBy,
		SLADeadline:         ticket.SLADeadline,
		ResolvedAt:          ticket.ResolvedAt,
		ReopenCount:         ticket.ReopenCount,
		SatisfactionRating:  ticket.SatisfactionRating,
		SatisfactionHistory: ticket.SatisfactionHistory,
		History:             ticket.History,
		Remarks:             ticket.Remarks,
	}
	if rating, ok := ticket.CurrentCycleRating(); ok {
		resp.CurrentRating = &rating
	}
	if resp.SatisfactionHistory == nil {
		resp.SatisfactionHistory = []domain.SatisfactionRecord{}
	}
	if resp.History == nil {
		resp.History = []domain.WorkflowHistoryItem{}
	}
	if resp.Remarks == nil {
		resp.Remarks = []domain.Remark{}
	}
	return resp
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
