package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

type memoryEntry struct {
	mu     sync.Mutex
	ticket *domain.Ticket
}

// memoryTicketRepository keeps tickets in process. The index lock only guards
// the maps; version checks and writes hold the per-ticket lock, so transitions
// on different tickets never contend.
type memoryTicketRepository struct {
	mu         sync.RWMutex
	byID       map[string]*memoryEntry
	byTicketID map[string]string
}

// NewMemoryTicketRepository builds an in-memory Ticket Store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		byID:       make(map[string]*memoryEntry),
		byTicketID: make(map[string]string),
	}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[ticket.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byTicketID[ticket.TicketID]; exists {
		return ErrDuplicate
	}
	r.byID[ticket.ID] = &memoryEntry{ticket: ticket.Clone()}
	r.byTicketID[ticket.TicketID] = ticket.ID
	return nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	entry, ok := r.entry(ticket.ID)
	if !ok {
		return ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	stored := entry.ticket
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	if len(ticket.History) < len(stored.History) || len(ticket.Remarks) < len(stored.Remarks) ||
		len(ticket.SatisfactionHistory) < len(stored.SatisfactionHistory) {
		return ErrVersionConflict
	}
	entry.ticket = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	entry, ok := r.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ticket.Clone(), nil
}

func (r *memoryTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.RLock()
	id, ok := r.byTicketID[ticketID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, 0, len(r.byID))
	for _, entry := range r.byID {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		ticket := entry.ticket.Clone()
		entry.mu.Unlock()
		if statusAllowed(filter, ticket.Status) {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TicketID < result[j].TicketID })
	return result, nil
}

func (r *memoryTicketRepository) entry(id string) (*memoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byID[id]
	return entry, ok
}
