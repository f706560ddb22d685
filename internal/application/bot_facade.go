// File: internal/application/bot_facade.go
package application

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
	"telegram-music-downloader/internal/usecase"
)

const maxResultButtons = 10

// BotFacade composes usecases into high-level bot replies. Methods return
// strings and button rows so the Telegram adapter just forwards them.
type BotFacade struct {
	SearchUC   usecase.SearchUseCase
	DownloadUC usecase.DownloadUseCase
}

func NewBotFacade(searchUC usecase.SearchUseCase, downloadUC usecase.DownloadUseCase) *BotFacade {
	return &BotFacade{SearchUC: searchUC, DownloadUC: downloadUC}
}

// HandleStart returns the welcome text.
func (b *BotFacade) HandleStart() string {
	return strings.Join([]string{
		"🎵 Music Downloader Bot 🎵",
		"",
		"Send me a song name and I will fetch it as an MP3 with full metadata and album art.",
		"",
		"1. Send a song name, or use /search <song name>",
		"2. Pick a result",
		"3. Pick a quality (128kbps / 320kbps)",
		"",
		"Commands: /search /help /about",
	}, "\n")
}

// HandleHelp returns the command overview.
func (b *BotFacade) HandleHelp() string {
	return strings.Join([]string{
		"Available commands:",
		"/start - start the bot",
		"/help - this help",
		"/search <query> - search for songs",
		"/about - about this bot",
		"",
		"Or simply send a song name to search.",
	}, "\n")
}

// HandleAbout returns the about text.
func (b *BotFacade) HandleAbout() string {
	return strings.Join([]string{
		"Music downloader bot.",
		"Searches an external music catalog, converts tracks to MP3 with ffmpeg",
		"and embeds ID3 metadata plus cover art before sending them to you.",
	}, "\n")
}

// HandleSearch performs a search and renders a result keyboard.
func (b *BotFacade) HandleSearch(ctx context.Context, tgID int64, query string) (string, [][]adapter.InlineButton, error) {
	tracks, err := b.SearchUC.Search(ctx, tgID, query)
	if err != nil {
		return "", nil, err
	}
	if len(tracks) == 0 {
		return "❌ No results found. Try a different search term.", nil, nil
	}

	n := len(tracks)
	if n > maxResultButtons {
		n = maxResultButtons
	}
	rows := make([][]adapter.InlineButton, 0, n)
	for i, t := range tracks[:n] {
		rows = append(rows, []adapter.InlineButton{{
			Text: resultButtonText(i+1, t),
			Data: "sel:" + t.ID,
		}})
	}
	text := fmt.Sprintf("📋 Found %d results for %q:", len(tracks), query)
	return text, rows, nil
}

// HandleSelect renders track details plus quality buttons.
func (b *BotFacade) HandleSelect(ctx context.Context, tgID int64, trackID string) (string, [][]adapter.InlineButton, error) {
	track, err := b.SearchUC.Selected(ctx, tgID, trackID)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎵 %s\n👤 Artist: %s\n💿 Album: %s\n⏱ Duration: %s\n",
		track.Title, track.Artist(), track.Album, model.FormatDuration(track.Duration))
	if track.Year != "" {
		fmt.Fprintf(&sb, "📅 Year: %s\n", track.Year)
	}
	sb.WriteString("\nSelect download quality:")

	var rows [][]adapter.InlineButton
	for _, q := range track.Qualities() {
		rows = append(rows, []adapter.InlineButton{{
			Text: "⬇️ Download " + string(q) + " MP3",
			Data: fmt.Sprintf("dl:%s:%s", track.ID, q),
		}})
	}
	if len(rows) == 0 {
		return "❌ No downloadable version of this track is available.", nil, nil
	}
	rows = append(rows, []adapter.InlineButton{
		{Text: "🔍 Search Again", Data: "again"},
		{Text: "❌ Cancel", Data: "cancel"},
	})
	return sb.String(), rows, nil
}

// HandleSearchAgain re-runs the user's last remembered search.
func (b *BotFacade) HandleSearchAgain(ctx context.Context, tgID int64) (string, [][]adapter.InlineButton, error) {
	query, err := b.SearchUC.LastQuery(ctx, tgID)
	if err != nil || strings.TrimSpace(query) == "" {
		return "Send a song name to search.", nil, nil
	}
	return b.HandleSearch(ctx, tgID, query)
}

// HandleCancel clears the user's search session.
func (b *BotFacade) HandleCancel(ctx context.Context, tgID int64) string {
	_ = b.SearchUC.Forget(ctx, tgID)
	return "Operation cancelled."
}

func resultButtonText(idx int, t *model.Track) string {
	text := fmt.Sprintf("%d. %s", idx, truncateRunes(t.Title, 35))
	if artist := t.Artist(); artist != "Unknown Artist" {
		if utf8.RuneCountInString(artist) > 20 {
			artist = truncateRunes(artist, 17) + "..."
		}
		text += " - " + artist
	}
	return text
}

// truncateRunes shortens s to at most n runes without splitting multibyte
// characters; Telegram rejects messages containing invalid UTF-8.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
