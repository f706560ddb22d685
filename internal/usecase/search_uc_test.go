package usecase

import (
	"context"
	"errors"
	"testing"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
)

func TestSearchStoresSession(t *testing.T) {
	t.Parallel()

	tracks := []*model.Track{{ID: "s1", Title: "First"}, {ID: "s2", Title: "Second"}}
	catalog := &mockCatalog{
		searchFn: func(_ context.Context, term string) ([]*model.Track, error) {
			if term != "kesariya" {
				t.Errorf("term = %q", term)
			}
			return tracks, nil
		},
	}
	sessions := newMockSessions()
	uc := NewSearchUseCase(catalog, sessions)

	got, err := uc.Search(context.Background(), 42, "  kesariya  ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tracks", len(got))
	}

	sess, err := sessions.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.Query != "kesariya" || len(sess.Results) != 2 {
		t.Fatalf("session = %+v", sess)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	uc := NewSearchUseCase(catalog, newMockSessions())

	if _, err := uc.Search(context.Background(), 42, "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if catalog.searchCalls != 0 {
		t.Fatalf("catalog should not be queried, got %d calls", catalog.searchCalls)
	}
}

func TestSearchCatalogOutage(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		searchFn: func(context.Context, string) ([]*model.Track, error) {
			return nil, domain.ErrCatalogUnavailable
		},
	}
	sessions := newMockSessions()
	uc := NewSearchUseCase(catalog, sessions)

	if _, err := uc.Search(context.Background(), 42, "any"); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if _, err := sessions.Get(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("no session should be stored on outage")
	}
}

func TestSearchSurvivesSessionStoreFailure(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		searchFn: func(context.Context, string) ([]*model.Track, error) {
			return []*model.Track{{ID: "s1"}}, nil
		},
	}
	sessions := newMockSessions()
	sessions.setErr = errors.New("redis down")
	uc := NewSearchUseCase(catalog, sessions)

	got, err := uc.Search(context.Background(), 42, "any")
	if err != nil {
		t.Fatalf("Search must not fail on session store error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d tracks", len(got))
	}
}

func TestSelectedFromSession(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	sessions := newMockSessions()
	uc := NewSearchUseCase(catalog, sessions)

	catalog.searchFn = func(context.Context, string) ([]*model.Track, error) {
		return []*model.Track{{ID: "s1", Title: "First"}}, nil
	}
	if _, err := uc.Search(context.Background(), 42, "any"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	track, err := uc.Selected(context.Background(), 42, "s1")
	if err != nil {
		t.Fatalf("Selected: %v", err)
	}
	if track.Title != "First" {
		t.Fatalf("track = %+v", track)
	}
	if catalog.trackCalls != 0 {
		t.Fatalf("details endpoint should not be hit, got %d calls", catalog.trackCalls)
	}
}

func TestSelectedFallsBackToCatalog(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		trackFn: func(_ context.Context, id string) (*model.Track, error) {
			if id != "s9" {
				t.Errorf("id = %q", id)
			}
			return &model.Track{ID: "s9", Title: "Fresh"}, nil
		},
	}
	uc := NewSearchUseCase(catalog, newMockSessions())

	track, err := uc.Selected(context.Background(), 42, "s9")
	if err != nil {
		t.Fatalf("Selected: %v", err)
	}
	if track.Title != "Fresh" || catalog.trackCalls != 1 {
		t.Fatalf("track = %+v, calls = %d", track, catalog.trackCalls)
	}
}

func TestLastQuery(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		searchFn: func(context.Context, string) ([]*model.Track, error) {
			return []*model.Track{{ID: "s1"}}, nil
		},
	}
	sessions := newMockSessions()
	uc := NewSearchUseCase(catalog, sessions)

	if _, err := uc.LastQuery(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a session, got %v", err)
	}

	if _, err := uc.Search(context.Background(), 42, "kesariya"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	query, err := uc.LastQuery(context.Background(), 42)
	if err != nil {
		t.Fatalf("LastQuery: %v", err)
	}
	if query != "kesariya" {
		t.Fatalf("query = %q", query)
	}
}

func TestForget(t *testing.T) {
	t.Parallel()

	sessions := newMockSessions()
	uc := NewSearchUseCase(&mockCatalog{}, sessions)

	sessions.Set(context.Background(), 42, nil)
	if err := uc.Forget(context.Background(), 42); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := sessions.Get(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("session not cleared")
	}
}
