// File: internal/usecase/interfaces.go
package usecase

import (
	"context"

	"telegram-music-downloader/internal/domain/model"
)

// Narrow ports for the pipeline stages, implemented by internal/infra.

// Fetcher streams remote media to local temp files.
type Fetcher interface {
	FetchAudio(ctx context.Context, url, ext string) (path string, err error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Converter transcodes fetched audio into MP3 at a target bitrate.
type Converter interface {
	ToMP3(ctx context.Context, inputPath, outputPath string, quality model.Quality) error
}

// Tagger embeds metadata and cover art into a finished MP3.
type Tagger interface {
	Embed(path string, track *model.Track, artwork []byte) error
}
