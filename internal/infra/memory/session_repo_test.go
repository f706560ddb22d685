package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/repository"
)

func TestSessionRepoRoundtrip(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(time.Minute)
	ctx := context.Background()

	session := &repository.SearchSession{
		Query:   "kesariya",
		Results: []*model.Track{{ID: "s1", Title: "First"}},
	}
	if err := repo.Set(ctx, 42, session); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query != "kesariya" || len(got.Results) != 1 || got.Results[0].ID != "s1" {
		t.Fatalf("session = %+v", got)
	}
}

func TestSessionRepoMissing(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(time.Minute)
	if _, err := repo.Get(context.Background(), 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepoExpiry(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(time.Millisecond)
	ctx := context.Background()
	if err := repo.Set(ctx, 42, &repository.SearchSession{Query: "q"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := repo.Get(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestSessionRepoClear(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(time.Minute)
	ctx := context.Background()
	if err := repo.Set(ctx, 42, &repository.SearchSession{Query: "q"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Clear(ctx, 42); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := repo.Get(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
