// File: internal/infra/catalog/dto.go
package catalog

import (
	"encoding/json"
	"strings"

	"telegram-music-downloader/internal/domain/model"
)

// Wire types for the catalog API. Field shapes vary between deployments of
// the upstream service, so parsing stays permissive.

type songListResponse struct {
	Results []songDTO `json:"results"`
}

type songDTO struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Year     json.Number   `json:"year"`
	Language string        `json:"language"`
	Duration json.Number   `json:"duration"`
	Artists  artistsDTO    `json:"artists"`
	Album    albumDTO      `json:"album"`
	Images   []imageDTO    `json:"image"`
	Download []downloadDTO `json:"downloadUrl"`
}

type artistsDTO struct {
	Primary []namedDTO `json:"primary"`
}

type namedDTO struct {
	Name string `json:"name"`
}

type albumDTO struct {
	Name string `json:"name"`
}

type imageDTO struct {
	Quality string `json:"quality"` // e.g. "500x500"
	URL     string `json:"url"`
}

type downloadDTO struct {
	Quality string `json:"quality"` // e.g. "320kbps", "96kbps"
	URL     string `json:"url"`
}

func (s *songDTO) toTrack() *model.Track {
	t := &model.Track{
		ID:       s.ID,
		Title:    s.Name,
		Album:    s.Album.Name,
		Year:     s.Year.String(),
		Language: s.Language,
	}
	if t.Title == "" {
		t.Title = "Unknown Title"
	}
	if d, err := s.Duration.Int64(); err == nil {
		t.Duration = int(d)
	}
	for _, a := range s.Artists.Primary {
		if name := strings.TrimSpace(a.Name); name != "" {
			t.Artists = append(t.Artists, name)
		}
	}
	for _, img := range s.Images {
		if img.URL != "" {
			t.Images = append(t.Images, model.ImageVariant{Size: img.Quality, URL: img.URL})
		}
	}
	for _, d := range s.Download {
		q, ok := mapQuality(d.Quality)
		if !ok || d.URL == "" {
			continue
		}
		if _, err := t.DownloadURL(q); err == nil {
			continue // keep the first URL seen per tier
		}
		t.Downloads = append(t.Downloads, model.DownloadVariant{Quality: q, URL: d.URL})
	}
	return t
}

// mapQuality folds raw API labels onto the tiers offered to users.
// 96kbps streams are presented as the 128kbps tier, as the upstream
// service uses them interchangeably.
func mapQuality(raw string) (model.Quality, bool) {
	switch {
	case strings.Contains(raw, "320"):
		return model.Quality320, true
	case strings.Contains(raw, "160"):
		return model.Quality160, true
	case strings.Contains(raw, "128"), strings.Contains(raw, "96"):
		return model.Quality128, true
	}
	return "", false
}
