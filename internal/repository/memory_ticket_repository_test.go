package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

func newStoredTicket(t *testing.T, repo TicketRepository, id, ticketID string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		ID:       id,
		TicketID: ticketID,
		Version:  1,
		Status:   domain.TicketStatusNew,
		History:  []domain.WorkflowHistoryItem{{Seq: 1, Action: domain.ActionCreate}},
	}
	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return ticket
}

func TestMemoryRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	newStoredTicket(t, repo, "a", "NRB-2024-000001")

	got, err := repo.GetByTicketID(ctx, "NRB-2024-000001")
	if err != nil {
		t.Fatalf("GetByTicketID failed: %v", err)
	}
	if got.ID != "a" {
		t.Fatalf("got id %s", got.ID)
	}

	got.History = append(got.History, domain.WorkflowHistoryItem{Seq: 2})
	again, _ := repo.GetByID(ctx, "a")
	if len(again.History) != 1 {
		t.Fatal("mutating a fetched ticket must not change the store")
	}

	if err := repo.Create(ctx, &domain.Ticket{ID: "b", TicketID: "NRB-2024-000001"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryUpdateChecksVersion(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := newStoredTicket(t, repo, "a", "NRB-2024-000001")

	next := ticket.Clone()
	next.Version = 2
	next.Status = domain.TicketStatusAssigned
	next.History = append(next.History, domain.WorkflowHistoryItem{Seq: 2, Action: domain.ActionAssign})
	if err := repo.Update(ctx, next, 1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stale := ticket.Clone()
	stale.Version = 2
	stale.Status = domain.TicketStatusRejected
	if err := repo.Update(ctx, stale, 1); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, "a")
	if stored.Status != domain.TicketStatusAssigned || len(stored.History) != 2 {
		t.Fatalf("unexpected stored ticket %+v", stored)
	}

	if err := repo.Update(ctx, &domain.Ticket{ID: "missing"}, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryConcurrentUpdatesOneWinner(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ticket := newStoredTicket(t, repo, "a", "NRB-2024-000001")

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			next := ticket.Clone()
			next.Version = 2
			if err := repo.Update(context.Background(), next, 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMemoryRepositoryListFiltersAndOrders(t *testing.T) {
	repo := NewMemoryTicketRepository()
	newStoredTicket(t, repo, "b", "NRB-2024-000002")
	newStoredTicket(t, repo, "a", "NRB-2024-000001")

	all, err := repo.List(context.Background(), TicketFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].TicketID != "NRB-2024-000001" {
		t.Fatalf("unexpected list %+v", all)
	}
	none, _ := repo.List(context.Background(), TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusResolved}})
	if len(none) != 0 {
		t.Fatalf("expected no resolved tickets, got %d", len(none))
	}
}

func TestMemorySequenceIsPerYear(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, _ := seq.Next(ctx, 2024)
		if got != want {
			t.Fatalf("Next(2024) = %d, want %d", got, want)
		}
	}
	if got, _ := seq.Next(ctx, 2025); got != 1 {
		t.Fatalf("Next(2025) = %d, want 1", got)
	}
}
