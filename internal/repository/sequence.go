package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type memorySequence struct {
	mu     sync.Mutex
	byYear map[int]int64
}

// NewMemorySequence allocates sequences in process. Numbers restart with the
// process, so it is only suitable with the in-memory Ticket Store.
func NewMemorySequence() SequenceAllocator {
	return &memorySequence{byYear: make(map[int]int64)}
}

func (s *memorySequence) Next(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byYear[year]++
	return s.byYear[year], nil
}

type redisSequence struct {
	client *redis.Client
	prefix string
}

// NewRedisSequence allocates sequences with an atomic INCR per year.
func NewRedisSequence(client *redis.Client, prefix string) SequenceAllocator {
	if prefix == "" {
		prefix = "tickets:seq"
	}
	return &redisSequence{client: client, prefix: prefix}
}

func (s *redisSequence) Next(ctx context.Context, year int) (int64, error) {
	seq, err := s.client.Incr(ctx, fmt.Sprintf("%s:%04d", s.prefix, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate ticket sequence: %w", err)
	}
	return seq, nil
}

type postgresSequence struct {
	pool *pgxpool.Pool
}

// NewPostgresSequence allocates sequences from the ticket_sequences table.
func NewPostgresSequence(pool *pgxpool.Pool) SequenceAllocator {
	return &postgresSequence{pool: pool}
}

func (s *postgresSequence) Next(ctx context.Context, year int) (int64, error) {
	const query = `
        INSERT INTO ticket_sequences (year, last_value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_value = ticket_sequences.last_value + 1
        RETURNING last_value`
	var seq int64
	if err := s.pool.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("allocate ticket sequence: %w", err)
	}
	return seq, nil
}
