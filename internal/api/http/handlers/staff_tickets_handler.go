package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nairobi-county/county-tickets/internal/api/dto"
	"github.com/nairobi-county/county-tickets/internal/auth"
	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/service"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

// StaffTicketsHandler handles the staff workflow endpoints.
type StaffTicketsHandler struct {
	tickets *service.TicketService
	query   *service.QueryService
	clock   clock.Clock
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService, query *service.QueryService, clk clock.Clock) *StaffTicketsHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &StaffTicketsHandler{tickets: ticketService, query: query, clock: clk}
}

type transitionFunc func(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, note string) (*domain.Ticket, error)

// AssignTicket POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := loadTicket(c, h.tickets, req.Version)
	if err != nil {
		return err
	}
	updated, err := h.tickets.Assign(c.UserContext(), ticket, auth.ActorFromContext(c), req.Assignee, req.Department)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(updated, h.clock)})
}

// AdvanceTicket POST /staff/tickets/:id/advance.
func (h *StaffTicketsHandler) AdvanceTicket(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Advance)
}

// EscalateTicket POST /staff/tickets/:id/escalate.
func (h *StaffTicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Escalate)
}

// ResolveTicket POST /staff/tickets/:id/resolve.
func (h *StaffTicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Resolve)
}

// RejectTicket POST /staff/tickets/:id/reject.
func (h *StaffTicketsHandler) RejectTicket(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Reject)
}

// RecomputeSLA POST /staff/tickets/:id/recompute-sla.
func (h *StaffTicketsHandler) RecomputeSLA(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.RecomputeSLA)
}

// ListOverdue GET /staff/tickets/overdue.
func (h *StaffTicketsHandler) ListOverdue(c *fiber.Ctx) error {
	tickets, err := h.query.Overdue(c.UserContext(), h.clock.Now())
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i], h.clock))
	}
	return c.JSON(fiber.Map{"data": items, "count": len(items)})
}

func (h *StaffTicketsHandler) transition(c *fiber.Ctx, apply transitionFunc) error {
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := loadTicket(c, h.tickets, req.Version)
	if err != nil {
		return err
	}
	updated, err := apply(c.UserContext(), ticket, auth.ActorFromContext(c), firstNonEmpty(req.Reason, req.Note))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(updated, h.clock)})
}
