// File: internal/infra/tag/tagger.go
package tag

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bogem/id3v2"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// genreByLanguage maps catalog language labels to display genres.
var genreByLanguage = map[string]string{
	"hindi":     "Hindi",
	"tamil":     "Tamil",
	"telugu":    "Telugu",
	"malayalam": "Malayalam",
	"kannada":   "Kannada",
	"english":   "English",
	"punjabi":   "Punjabi",
}

// Tagger writes ID3v2 frames into finished MP3 files.
type Tagger struct{}

func NewTagger() *Tagger {
	return &Tagger{}
}

// Embed replaces the file's tags with the track's metadata and optional
// JPEG cover art. Failures wrap ErrTagEmbedFailed; the caller may still
// deliver the untagged file.
func (t *Tagger) Embed(path string, track *model.Track, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrTagEmbedFailed, path, err)
	}
	defer tag.Close()

	tag.DeleteAllFrames()
	tag.SetTitle(track.Title)
	tag.SetArtist(track.Artist())
	tag.SetAlbum(track.Album)
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, track.Artist())

	if year := yearPattern.FindString(track.Year); year != "" {
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, year)
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, year)
	}
	if genre := languageGenre(track.Language); genre != "" {
		tag.SetGenre(genre)
	}

	tag.AddCommentFrame(id3v2.CommentFrame{
		Encoding:    id3v2.EncodingUTF8,
		Language:    "eng",
		Description: "",
		Text:        "ID: " + track.ID,
	})

	if artwork != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     artwork,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %v", domain.ErrTagEmbedFailed, path, err)
	}
	return nil
}

func languageGenre(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	if g, ok := genreByLanguage[strings.ToLower(lang)]; ok {
		return g
	}
	lower := strings.ToLower(lang)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
