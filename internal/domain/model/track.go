package model

import (
	"fmt"
	"regexp"
	"strings"

	"telegram-music-downloader/internal/domain"
)

// Quality is a discrete bitrate tier offered by the catalog.
type Quality string

const (
	Quality128 Quality = "128kbps"
	Quality160 Quality = "160kbps"
	Quality320 Quality = "320kbps"
)

// ParseQuality maps user/callback input to a known tier.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "128", "128kbps":
		return Quality128, nil
	case "160", "160kbps":
		return Quality160, nil
	case "320", "320kbps":
		return Quality320, nil
	}
	return "", domain.ErrInvalidArgument
}

// Bitrate returns the ffmpeg bitrate argument for the tier.
func (q Quality) Bitrate() string {
	switch q {
	case Quality320:
		return "320k"
	case Quality160:
		return "160k"
	default:
		return "128k"
	}
}

// ImageVariant is one size of the track's cover art.
type ImageVariant struct {
	Size string // e.g. "500x500"
	URL  string
}

// DownloadVariant is one bitrate option with its media URL.
type DownloadVariant struct {
	Quality Quality
	URL     string
}

// Track is an immutable snapshot of a catalog entry. It lives for one
// request/response cycle and is never persisted.
type Track struct {
	ID       string
	Title    string
	Artists  []string
	Album    string
	Year     string
	Language string
	Duration int // seconds

	Images    []ImageVariant
	Downloads []DownloadVariant
}

// Artist joins the primary artists for display and tagging.
func (t *Track) Artist() string {
	if len(t.Artists) == 0 {
		return "Unknown Artist"
	}
	n := len(t.Artists)
	if n > 3 {
		n = 3
	}
	return strings.Join(t.Artists[:n], ", ")
}

// DownloadURL returns the media URL for the requested tier.
func (t *Track) DownloadURL(q Quality) (string, error) {
	for _, d := range t.Downloads {
		if d.Quality == q {
			return d.URL, nil
		}
	}
	return "", domain.ErrQualityUnavailable
}

// Qualities lists available tiers, highest first.
func (t *Track) Qualities() []Quality {
	order := []Quality{Quality320, Quality160, Quality128}
	var out []Quality
	for _, q := range order {
		for _, d := range t.Downloads {
			if d.Quality == q {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

// imageRank orders known cover sizes, biggest first.
var imageRank = map[string]int{
	"500x500": 5,
	"480x480": 4,
	"300x300": 3,
	"150x150": 2,
	"50x50":   1,
}

// BestImageURL picks the largest cover variant, or "" when none exist.
func (t *Track) BestImageURL() string {
	best, rank := "", -1
	for _, img := range t.Images {
		if img.URL == "" {
			continue
		}
		if r := imageRank[img.Size]; r > rank {
			best, rank = img.URL, r
		}
	}
	return best
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
var multiSpace = regexp.MustCompile(`\s+`)

// Filename builds a filesystem-safe MP3 name from the track title.
func (t *Track) Filename() string {
	name := invalidFilenameChars.ReplaceAllString(t.Title, "")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.Trim(name, ". ")
	if name == "" {
		name = t.ID
	}
	// Slice on rune boundaries, titles are rarely ASCII.
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}
	return name + ".mp3"
}

// FormatDuration renders seconds as MM:SS or H:MM:SS.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
