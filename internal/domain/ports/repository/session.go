package repository

import (
	"context"

	"telegram-music-downloader/internal/domain/model"
)

// SearchSession holds a user's last search so callback buttons can refer to
// result entries by track id. Sessions expire; nothing here is durable.
type SearchSession struct {
	Query   string         `json:"query"`
	Results []*model.Track `json:"results"`
}

// TrackByID finds a result in the session, nil when absent.
func (s *SearchSession) TrackByID(id string) *model.Track {
	for _, t := range s.Results {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// SessionRepository is the port for per-user transient search state.
type SessionRepository interface {
	Set(ctx context.Context, tgID int64, session *SearchSession) error
	Get(ctx context.Context, tgID int64) (*SearchSession, error)
	Clear(ctx context.Context, tgID int64) error
}
