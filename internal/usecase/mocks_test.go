package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
	"telegram-music-downloader/internal/domain/ports/repository"
)

type mockCatalog struct {
	mu          sync.Mutex
	searchFn    func(ctx context.Context, term string) ([]*model.Track, error)
	trackFn     func(ctx context.Context, id string) (*model.Track, error)
	searchCalls int
	trackCalls  int
}

func (m *mockCatalog) Search(ctx context.Context, term string) ([]*model.Track, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, term)
	}
	return nil, domain.ErrCatalogUnavailable
}

func (m *mockCatalog) Track(ctx context.Context, id string) (*model.Track, error) {
	m.mu.Lock()
	m.trackCalls++
	m.mu.Unlock()
	if m.trackFn != nil {
		return m.trackFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type mockSessions struct {
	mu       sync.Mutex
	sessions map[int64]*repository.SearchSession
	setErr   error
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[int64]*repository.SearchSession)}
}

func (m *mockSessions) Set(_ context.Context, tgID int64, s *repository.SearchSession) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[tgID] = s
	return nil
}

func (m *mockSessions) Get(_ context.Context, tgID int64) (*repository.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessions) Clear(_ context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tgID)
	return nil
}

// mockFetcher writes real files so cleanup behavior is observable.
type mockFetcher struct {
	dir      string
	audioErr error
	bytesErr error
	artBytes []byte
}

func (m *mockFetcher) FetchAudio(_ context.Context, _, ext string) (string, error) {
	if m.audioErr != nil {
		return "", m.audioErr
	}
	path := filepath.Join(m.dir, "raw-"+randomSuffix()+ext)
	if err := os.WriteFile(path, []byte("raw audio"), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (m *mockFetcher) FetchBytes(context.Context, string) ([]byte, error) {
	if m.bytesErr != nil {
		return nil, m.bytesErr
	}
	return m.artBytes, nil
}

var suffixCounter struct {
	mu sync.Mutex
	n  int
}

func randomSuffix() string {
	suffixCounter.mu.Lock()
	defer suffixCounter.mu.Unlock()
	suffixCounter.n++
	return string(rune('a' + suffixCounter.n%26))
}

type mockConverter struct {
	err   error
	calls int
}

func (m *mockConverter) ToMP3(_ context.Context, _, outputPath string, _ model.Quality) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputPath, []byte("mp3 audio data"), 0o600)
}

type mockTagger struct {
	err     error
	calls   int
	artwork []byte
}

func (m *mockTagger) Embed(_ string, _ *model.Track, artwork []byte) error {
	m.calls++
	m.artwork = artwork
	if m.err != nil {
		return m.err
	}
	return nil
}

type mockBot struct {
	mu      sync.Mutex
	sendErr error
	uploads []adapter.AudioUpload
	chatIDs []int64
}

func (m *mockBot) SendMessage(context.Context, int64, string) error { return nil }

func (m *mockBot) SendButtons(context.Context, int64, string, [][]adapter.InlineButton) error {
	return nil
}

func (m *mockBot) EditMessage(context.Context, int64, int, string) error { return nil }

func (m *mockBot) SendAudio(_ context.Context, chatID int64, up adapter.AudioUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.uploads = append(m.uploads, up)
	m.chatIDs = append(m.chatIDs, chatID)
	return nil
}

func (m *mockBot) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}
