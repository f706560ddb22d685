// File: internal/infra/fetch/fetcher.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain"
)

// Fetcher streams media URLs to request-scoped temp files.
type Fetcher struct {
	httpClient *http.Client
	dir        string
	maxBytes   int64
	log        *zerolog.Logger
}

func NewFetcher(cfg *config.DownloadConfig, logger *zerolog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		dir:        cfg.Dir,
		maxBytes:   cfg.MaxBytes,
		log:        logger,
	}
}

// rejectedContentType flags responses that are definitely not media. Signed
// media URLs frequently omit or mislabel audio types, so only obvious
// mismatches are refused.
func rejectedContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/json")
}

// FetchAudio streams url into a unique temp file and returns its path.
// The caller owns the file; Cleanup removes it on every exit path.
func (f *Fetcher) FetchAudio(ctx context.Context, url, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", domain.ErrDownloadFailed, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); rejectedContentType(ct) {
		return "", fmt.Errorf("%w: unexpected content type %q", domain.ErrDownloadFailed, ct)
	}
	if resp.ContentLength > f.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit", domain.ErrDownloadFailed, resp.ContentLength)
	}

	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(f.dir, "tmdl-"+uuid.NewString()+ext)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrDownloadFailed, err)
	}

	start := time.Now()
	written, err := io.Copy(file, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > f.maxBytes {
		err = fmt.Errorf("body exceeds %d bytes", f.maxBytes)
	}
	if err == nil && resp.ContentLength > 0 && written < resp.ContentLength {
		err = fmt.Errorf("truncated transfer: %d of %d bytes", written, resp.ContentLength)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	f.log.Debug().Str("path", path).Int64("bytes", written).Dur("elapsed", time.Since(start)).Msg("fetched audio")
	return path, nil
}

// FetchBytes downloads a small resource (cover art) into memory.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// Cleanup removes temp files, ignoring paths that are already gone.
// It is safe to call multiple times with the same paths.
func Cleanup(logger *zerolog.Logger, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn().Str("path", p).Err(err).Msg("temp file cleanup failed")
		}
	}
}
