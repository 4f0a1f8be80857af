package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	fake := NewFake(start)
	fake.Advance(90 * time.Minute)
	if got := fake.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("Now() = %v", got)
	}
	fake.Set(start)
	if got := fake.Now(); !got.Equal(start) {
		t.Fatalf("Now() after Set = %v", got)
	}
}
