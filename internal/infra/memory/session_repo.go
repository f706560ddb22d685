package memory

import (
	"context"
	"sync"
	"time"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo is the in-process fallback used when Redis is not configured.
// Entries expire lazily on read.
type SessionRepo struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[int64]entry
}

type entry struct {
	session  *repository.SearchSession
	deadline time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionRepo{ttl: ttl, m: make(map[int64]entry)}
}

func (s *SessionRepo) Set(ctx context.Context, tgID int64, session *repository.SearchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[tgID] = entry{session: session, deadline: time.Now().Add(s.ttl)}
	return nil
}

func (s *SessionRepo) Get(ctx context.Context, tgID int64) (*repository.SearchSession, error) {
	s.mu.RLock()
	e, ok := s.m[tgID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if time.Now().After(e.deadline) {
		s.mu.Lock()
		delete(s.m, tgID)
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return e.session, nil
}

func (s *SessionRepo) Clear(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, tgID)
	return nil
}
