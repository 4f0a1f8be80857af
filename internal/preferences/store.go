// Package preferences keeps small per-owner UI flags such as "map guide seen".
package preferences

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

const (
	maxNameLength  = 128
	maxValueLength = 4096
)

// ErrNotFound is returned when a preference has never been set.
var ErrNotFound = errors.New("preference not found")

// Store is a string key-value store scoped by owner.
type Store interface {
	Get(ctx context.Context, owner, key string) (string, error)
	Set(ctx context.Context, owner, key, value string) error
	List(ctx context.Context, owner string) (map[string]string, error)
}

// Validate checks owner, key and value bounds.
func Validate(owner, key, value string) error {
	for field, v := range map[string]string{"owner": owner, "key": key} {
		if strings.TrimSpace(v) == "" || len(v) > maxNameLength || strings.ContainsAny(v, ": \t\n") {
			return apperrors.NewValidationError("invalid preference "+field, map[string]any{field: v})
		}
	}
	if len(value) > maxValueLength {
		return apperrors.NewValidationError("preference value too long", map[string]any{"max": maxValueLength})
	}
	return nil
}

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStore builds a process-local store.
func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string]map[string]string)}
}

func (s *memoryStore) Get(ctx context.Context, owner, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[owner][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(ctx context.Context, owner, key, value string) error {
	if err := Validate(owner, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[owner] == nil {
		s.values[owner] = make(map[string]string)
	}
	s.values[owner][key] = value
	return nil
}

func (s *memoryStore) List(ctx context.Context, owner string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values[owner]))
	for k, v := range s.values[owner] {
		out[k] = v
	}
	return out, nil
}

// redisStore keeps one hash per owner at "<prefix>:<owner>".
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Redis backed store.
func NewRedisStore(client *redis.Client, prefix string) Store {
	if prefix == "" {
		prefix = "prefs"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) hashKey(owner string) string {
	return s.prefix + ":" + owner
}

func (s *redisStore) Get(ctx context.Context, owner, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.hashKey(owner), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *redisStore) Set(ctx context.Context, owner, key, value string) error {
	if err := Validate(owner, key, value); err != nil {
		return err
	}
	return s.client.HSet(ctx, s.hashKey(owner), key, value).Err()
}

func (s *redisStore) List(ctx context.Context, owner string) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.hashKey(owner)).Result()
}
