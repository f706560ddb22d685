package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps each user's last search results in Redis so that
// callback buttons stay valid across bot restarts. Entries expire on their
// own; nothing here is durable state.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(tgID int64) string {
	return fmt.Sprintf("search_session:%d", tgID)
}

func (s *SessionRepo) Set(ctx context.Context, tgID int64, session *repository.SearchSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(tgID), data, s.ttl)
}

func (s *SessionRepo) Get(ctx context.Context, tgID int64) (*repository.SearchSession, error) {
	data, err := s.client.Get(ctx, s.sessionKey(tgID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var session repository.SearchSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionRepo) Clear(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, s.sessionKey(tgID))
}
