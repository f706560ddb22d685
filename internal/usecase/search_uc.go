// File: internal/usecase/search_uc.go
package usecase

import (
	"context"
	"strings"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
	"telegram-music-downloader/internal/domain/ports/repository"
	"telegram-music-downloader/internal/infra/metrics"
)

// Compile-time check
var _ SearchUseCase = (*searchUC)(nil)

type SearchUseCase interface {
	// Search queries the catalog and remembers the results for the user so
	// callback buttons can select tracks by id.
	Search(ctx context.Context, tgID int64, term string) ([]*model.Track, error)
	// Selected returns a track from the user's remembered results, falling
	// back to a catalog details fetch when the session expired.
	Selected(ctx context.Context, tgID int64, trackID string) (*model.Track, error)
	// LastQuery returns the user's remembered search term.
	LastQuery(ctx context.Context, tgID int64) (string, error)
	// Forget clears the user's session.
	Forget(ctx context.Context, tgID int64) error
}

type searchUC struct {
	catalog  adapter.CatalogAdapter
	sessions repository.SessionRepository
}

func NewSearchUseCase(catalog adapter.CatalogAdapter, sessions repository.SessionRepository) *searchUC {
	return &searchUC{catalog: catalog, sessions: sessions}
}

func (s *searchUC) Search(ctx context.Context, tgID int64, term string) ([]*model.Track, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ErrInvalidArgument
	}

	tracks, err := s.catalog.Search(ctx, term)
	if err != nil {
		metrics.IncSearch("error")
		return nil, err
	}
	if len(tracks) == 0 {
		metrics.IncSearch("empty")
		return tracks, nil
	}
	metrics.IncSearch("ok")

	// Best-effort: an expired or unreachable session store only costs the
	// user their inline buttons, not the search itself.
	_ = s.sessions.Set(ctx, tgID, &repository.SearchSession{Query: term, Results: tracks})
	return tracks, nil
}

func (s *searchUC) Selected(ctx context.Context, tgID int64, trackID string) (*model.Track, error) {
	if sess, err := s.sessions.Get(ctx, tgID); err == nil {
		if t := sess.TrackByID(trackID); t != nil {
			return t, nil
		}
	}
	return s.catalog.Track(ctx, trackID)
}

func (s *searchUC) LastQuery(ctx context.Context, tgID int64) (string, error) {
	sess, err := s.sessions.Get(ctx, tgID)
	if err != nil {
		return "", err
	}
	return sess.Query, nil
}

func (s *searchUC) Forget(ctx context.Context, tgID int64) error {
	return s.sessions.Clear(ctx, tgID)
}
