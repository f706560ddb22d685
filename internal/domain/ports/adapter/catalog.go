package adapter

import (
	"context"

	"telegram-music-downloader/internal/domain/model"
)

// CatalogAdapter is the boundary to the external music catalog API.
// The response schema belongs to the external service; implementations
// normalize it into model.Track.
type CatalogAdapter interface {
	// Search returns tracks in catalog order. No matches is an empty
	// slice, not an error.
	Search(ctx context.Context, term string) ([]*model.Track, error)
	// Track fetches full details (download variants included) for one id.
	Track(ctx context.Context, id string) (*model.Track, error)
}
