package preferences

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "citizen-1", "map_guide_seen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "citizen-1", "map_guide_seen", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "citizen-1", "training_step", "3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get(ctx, "citizen-1", "map_guide_seen")
	if err != nil || v != "true" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	all, err := s.List(ctx, "citizen-1")
	if err != nil || len(all) != 2 {
		t.Fatalf("List = %v, %v", all, err)
	}
	all["training_step"] = "9"
	if v, _ := s.Get(ctx, "citizen-1", "training_step"); v != "3" {
		t.Fatal("List must return a copy")
	}
	if other, _ := s.List(ctx, "citizen-2"); len(other) != 0 {
		t.Fatalf("owners must be isolated, got %v", other)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string][3]string{
		"empty owner": {"", "k", "v"},
		"colon key":   {"o", "a:b", "v"},
		"space owner": {"a b", "k", "v"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if !apperrors.HasCode(Validate(c[0], c[1], c[2]), apperrors.CodeValidation) {
				t.Fatal("expected validation error")
			}
		})
	}
	if err := Validate("citizen-1", "map_guide_seen", "true"); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}
