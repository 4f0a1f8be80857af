package repository

import (
	"context"
	"errors"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

var (
	// ErrNotFound is returned when no ticket matches.
	ErrNotFound = errors.New("ticket not found")
	// ErrVersionConflict is returned when the stored version differs from the expected one.
	ErrVersionConflict = errors.New("ticket version conflict")
	// ErrDuplicate is returned when a ticket id or public ticket id already exists.
	ErrDuplicate = errors.New("ticket already exists")
)

// TicketFilter narrows List results at the storage layer.
type TicketFilter struct {
	Statuses []domain.TicketStatus
}

// TicketRepository is the Ticket Store collaborator. Implementations must make
// Update an atomic compare-and-swap on the ticket version.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update replaces the stored ticket only if its version equals
	// expectedVersion. History, remarks and ratings are append-only.
	Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// SequenceAllocator hands out ticket sequence numbers, never reusing one
// within a year.
type SequenceAllocator interface {
	Next(ctx context.Context, year int) (int64, error)
}

func statusAllowed(filter TicketFilter, status domain.TicketStatus) bool {
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, s := range filter.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
