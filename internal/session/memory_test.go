package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/cinemate/internal/models"
)

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(30*time.Minute, nil)
	store.now = func() time.Time { return now }

	if _, err := store.Create(ctx, New("s1", "movie", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	now = now.Add(29 * time.Minute)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("Expected session before expiry, got %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
	if n := store.sweep(); n != 1 {
		t.Errorf("Expected sweep to remove 1 session, got %d", n)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestMemoryStore_CreateOnlyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(0, nil)

	first, err := store.Create(ctx, New("s1", "movie", time.Now()))
	if err != nil || !first {
		t.Fatalf("Expected first create to succeed, got %v, %v", first, err)
	}
	second, err := store.Create(ctx, New("s1", "car", time.Now()))
	if err != nil || second {
		t.Fatalf("Expected second create to be a no-op, got %v, %v", second, err)
	}
	s, _ := store.Get(ctx, "s1")
	if s.Domain != "movie" {
		t.Errorf("Expected original domain 'movie', got '%s'", s.Domain)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, nil)

	s := New("s1", "movie", time.Now())
	s.Recommendations = []models.RecommendationRecord{{Name: "Chronos V", Matches: map[string]bool{"RatingRange": true}}}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := store.Get(ctx, "s1")
	got.Recommendations[0].Matches["RatingRange"] = false
	got.Recommendations[0].Name = "changed"

	again, _ := store.Get(ctx, "s1")
	if again.Recommendations[0].Name != "Chronos V" || !again.Recommendations[0].Matches["RatingRange"] {
		t.Errorf("Expected stored session to be isolated from callers, got %+v", again.Recommendations[0])
	}
}

func TestMemoryStore_JanitorStops(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.StartJanitor(ctx, 5*time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Janitor did not stop after cancellation")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()
	if got := Key("abc"); got != "cinemate:session:abc" {
		t.Errorf("Expected 'cinemate:session:abc', got '%s'", got)
	}
}
