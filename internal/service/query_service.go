package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/repository"
	"github.com/nairobi-county/county-tickets/internal/sla"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

// SortField names a sortable ticket column.
type SortField string

const (
	SortByTicketID    SortField = "ticketId"
	SortByStatus      SortField = "status"
	SortBySLADeadline SortField = "slaDeadline"
	SortByUpdatedAt   SortField = "updatedAt"
)

// SortDirection orders results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// TicketListFilter describes a listing request. Zero values list everything by ticketId ascending.
type TicketListFilter struct {
	Status        string
	SearchText    string
	SortField     SortField
	SortDirection SortDirection
	Limit         int
	Offset        int
}

// QueryService is the read side for listing screens. It never writes.
type QueryService struct {
	tickets repository.TicketRepository
}

// NewQueryService constructs the service.
func NewQueryService(tickets repository.TicketRepository) *QueryService {
	return &QueryService{tickets: tickets}
}

// List filters, searches and sorts tickets. The sort is stable and ties are
// broken by ticketId ascending in both directions.
func (q *QueryService) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	field := filter.SortField
	if field == "" {
		field = SortByTicketID
	}
	if !validSortField(field) {
		return nil, apperrors.NewValidationError("unknown sort field", map[string]any{"sort": string(field)})
	}
	direction := filter.SortDirection
	if direction == "" {
		direction = SortAsc
	}
	if direction != SortAsc && direction != SortDesc {
		return nil, apperrors.NewValidationError("unknown sort direction", map[string]any{"direction": string(direction)})
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.NewValidationError("limit and offset must not be negative", nil)
	}

	repoFilter, reopenedOnly, err := statusFilter(filter.Status)
	if err != nil {
		return nil, err
	}
	tickets, err := q.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	needle := strings.ToLower(strings.TrimSpace(filter.SearchText))
	matched := tickets[:0]
	for _, t := range tickets {
		if reopenedOnly && !t.IsReopened() {
			continue
		}
		if needle != "" && !matchesSearch(&t, needle) {
			continue
		}
		matched = append(matched, t)
	}

	sortTickets(matched, field, direction)
	return paginate(matched, filter.Limit, filter.Offset), nil
}

// Overdue returns open tickets past their deadline at now, earliest deadline first.
func (q *QueryService) Overdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	tickets, err := q.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	overdue := make([]domain.Ticket, 0)
	for i := range tickets {
		if sla.IsOverdue(&tickets[i], now) {
			overdue = append(overdue, tickets[i])
		}
	}
	sortTickets(overdue, SortBySLADeadline, SortAsc)
	return overdue, nil
}

func statusFilter(raw string) (repository.TicketFilter, bool, error) {
	status := strings.TrimSpace(raw)
	if status == "" || status == StatusAll {
		return repository.TicketFilter{}, false, nil
	}
	s := domain.TicketStatus(status)
	if !s.Valid() {
		return repository.TicketFilter{}, false, apperrors.NewValidationError("unknown status filter", map[string]any{"status": status})
	}
	if s == domain.TicketStatusReopened {
		return repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusInProgress}}, true, nil
	}
	return repository.TicketFilter{Statuses: []domain.TicketStatus{s}}, false, nil
}

func matchesSearch(t *domain.Ticket, needle string) bool {
	return strings.Contains(strings.ToLower(t.TicketID), needle) ||
		strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.WardName), needle)
}

func validSortField(f SortField) bool {
	switch f {
	case SortByTicketID, SortByStatus, SortBySLADeadline, SortByUpdatedAt:
		return true
	}
	return false
}

func sortTickets(tickets []domain.Ticket, field SortField, direction SortDirection) {
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := &tickets[i], &tickets[j]
		c := compareField(a, b, field)
		if direction == SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.TicketID < b.TicketID
	})
}

// compareField returns -1, 0 or 1. Tickets without a deadline sort after
// those with one in ascending order.
func compareField(a, b *domain.Ticket, field SortField) int {
	switch field {
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortBySLADeadline:
		switch {
		case a.SLADeadline == nil && b.SLADeadline == nil:
			return 0
		case a.SLADeadline == nil:
			return 1
		case b.SLADeadline == nil:
			return -1
		}
		return a.SLADeadline.Compare(*b.SLADeadline)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(a.TicketID, b.TicketID)
	}
}

func paginate(tickets []domain.Ticket, limit, offset int) []domain.Ticket {
	if offset >= len(tickets) {
		return []domain.Ticket{}
	}
	tickets = tickets[offset:]
	if limit > 0 && limit < len(tickets) {
		tickets = tickets[:limit]
	}
	return tickets
}
