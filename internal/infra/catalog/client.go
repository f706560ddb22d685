// File: internal/infra/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CatalogAdapter = (*Client)(nil)

// Client talks to the external catalog API. The response schema is owned by
// the external service; dto.go normalizes it into model.Track.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxRetries int
	log        *zerolog.Logger
}

func NewClient(cfg *config.CatalogConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		log:        logger,
	}
}

// Search returns tracks in catalog order. Empty result is not an error.
func (c *Client) Search(ctx context.Context, term string) ([]*model.Track, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ErrInvalidArgument
	}

	q := url.Values{}
	q.Set("query", term)
	q.Set("limit", "10")

	var resp songListResponse
	if err := c.getJSON(ctx, "/search/songs", q, &resp); err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(resp.Results))
	for _, dto := range resp.Results {
		tracks = append(tracks, dto.toTrack())
	}
	return tracks, nil
}

// Track fetches full details for one catalog id.
func (c *Client) Track(ctx context.Context, id string) (*model.Track, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}

	q := url.Values{}
	q.Set("id", id)

	var resp songListResponse
	if err := c.getJSON(ctx, "/song", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, domain.ErrNotFound
	}
	return resp.Results[0].toTrack(), nil
}

// getJSON performs a GET with retry on timeout. Network failures, non-2xx
// statuses and malformed bodies all surface as ErrCatalogUnavailable.
func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	u := c.baseURL + endpoint + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			c.log.Warn().Str("endpoint", endpoint).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("catalog retry")
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		err := c.doOnce(ctx, u, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
