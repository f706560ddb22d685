// File: internal/infra/telegram/real_bot.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-music-downloader/internal/application"
	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
	"telegram-music-downloader/internal/infra/logging"
	red "telegram-music-downloader/internal/infra/redis"
	"telegram-music-downloader/internal/infra/worker"
)

// Compile-time check
var _ adapter.TelegramBotAdapter = (*RealBotAdapter)(nil)

// RealBotAdapter polls Telegram for updates, fans them out to a bounded set
// of workers and delegates replies to the BotFacade. Download jobs run on a
// separate pool so slow pipelines never stall update handling.
type RealBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter // nil when Redis is not configured
	pool        *worker.Pool
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		pool:          pool,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Int("worker", id).Err(err).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	switch {
	case update.CallbackQuery != nil:
		return r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return r.handleMessage(ctx, update.Message)
	}
	return nil
}

func (r *RealBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return r.SendMessage(ctx, chatID, r.facade.HandleStart())
		case "help":
			return r.SendMessage(ctx, chatID, r.facade.HandleHelp())
		case "about":
			return r.SendMessage(ctx, chatID, r.facade.HandleAbout())
		case "search":
			query := strings.TrimSpace(msg.CommandArguments())
			if query == "" {
				return r.SendMessage(ctx, chatID, "Please provide a search query.\nExample: /search Kesariya")
			}
			return r.runSearch(ctx, chatID, query)
		default:
			return r.SendMessage(ctx, chatID, "Unknown command. Send /help for the list of commands.")
		}
	}

	// Bare text is treated as a search query.
	return r.runSearch(ctx, chatID, text)
}

func (r *RealBotAdapter) runSearch(ctx context.Context, chatID int64, query string) error {
	_ = r.SendMessage(ctx, chatID, "🔍 Searching: "+query)
	text, rows, err := r.facade.HandleSearch(ctx, chatID, query)
	if err != nil {
		return r.SendMessage(ctx, chatID, userErrorText(err))
	}
	if len(rows) == 0 {
		return r.SendMessage(ctx, chatID, text)
	}
	return r.SendButtons(ctx, chatID, text, rows)
}

type cbHandler func(ctx context.Context, chatID int64, data string) error

// Prefix-match callback routes.
func (r *RealBotAdapter) cbPrefixRoutes() []struct {
	Prefix string
	Fn     cbHandler
} {
	return []struct {
		Prefix string
		Fn     cbHandler
	}{
		{
			Prefix: "sel:",
			Fn: func(ctx context.Context, chatID int64, data string) error {
				trackID := strings.TrimPrefix(data, "sel:")
				text, rows, err := r.facade.HandleSelect(ctx, chatID, trackID)
				if err != nil {
					return r.SendMessage(ctx, chatID, userErrorText(err))
				}
				if len(rows) == 0 {
					return r.SendMessage(ctx, chatID, text)
				}
				return r.SendButtons(ctx, chatID, text, rows)
			},
		},
		{
			Prefix: "dl:",
			Fn: func(ctx context.Context, chatID int64, data string) error {
				parts := strings.Split(strings.TrimPrefix(data, "dl:"), ":")
				if len(parts) != 2 {
					return r.SendMessage(ctx, chatID, "Malformed selection. Please search again.")
				}
				return r.startDownload(ctx, chatID, parts[0], parts[1])
			},
		},
	}
}

func (r *RealBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// Ack so the client stops showing a spinner.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("callback ack failed")
	}
	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)
	data := cb.Data

	if data == "cancel" {
		return r.SendMessage(ctx, chatID, r.facade.HandleCancel(ctx, chatID))
	}
	if data == "again" {
		text, rows, err := r.facade.HandleSearchAgain(ctx, chatID)
		if err != nil {
			return r.SendMessage(ctx, chatID, userErrorText(err))
		}
		if len(rows) == 0 {
			return r.SendMessage(ctx, chatID, text)
		}
		return r.SendButtons(ctx, chatID, text, rows)
	}
	for _, route := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, route.Prefix) {
			return route.Fn(ctx, chatID, data)
		}
	}
	return r.SendMessage(ctx, chatID, "I didn't understand that. Send /help for commands.")
}

// startDownload validates the request, applies the per-user rate limit and
// submits the pipeline to the job pool. Status updates edit one message.
func (r *RealBotAdapter) startDownload(ctx context.Context, chatID int64, trackID, rawQuality string) error {
	quality, err := model.ParseQuality(rawQuality)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Unknown quality tier. Please pick again.")
	}

	if r.rateLimiter != nil {
		key := red.UserActionKey(chatID, "download")
		allowed, lerr := r.rateLimiter.Allow(ctx, key, r.cfg.DownloadsPerWindow, r.cfg.RateWindow)
		if lerr != nil {
			r.log.Warn().Err(lerr).Msg("rate limiter unavailable, allowing request")
		} else if !allowed {
			return r.SendMessage(ctx, chatID, userErrorText(domain.ErrRateLimited))
		}
	}

	track, err := r.facade.SearchUC.Selected(ctx, chatID, trackID)
	if err != nil {
		return r.SendMessage(ctx, chatID, userErrorText(err))
	}

	statusMsg, err := r.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("⏬ Starting download (%s)...", quality)))
	if err != nil {
		return err
	}

	job := model.NewDownloadJob(chatID, track, quality)
	submitErr := r.pool.Submit(func(jobCtx context.Context) error {
		progress := func(status model.JobStatus) {
			_ = r.EditMessage(jobCtx, chatID, statusMsg.MessageID, statusText(status, quality))
		}
		if runErr := r.facade.DownloadUC.Run(jobCtx, job, progress); runErr != nil {
			_ = r.EditMessage(jobCtx, chatID, statusMsg.MessageID, userErrorText(runErr))
			return runErr
		}
		_ = r.EditMessage(jobCtx, chatID, statusMsg.MessageID, "✅ Download complete! Check your chat for the song.")
		return nil
	})
	if submitErr != nil {
		return r.EditMessage(ctx, chatID, statusMsg.MessageID, "The bot is busy right now. Please try again in a moment.")
	}
	return nil
}

// SendMessage sends a plain text message to a chat.
func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// EditMessage rewrites a previously sent message in place.
func (r *RealBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (r *RealBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			switch {
			case btn.URL != "":
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			case btn.Data != "":
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			default:
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Text))
			}
		}
		kbRows = append(kbRows, btns)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

// SendAudio uploads a finished file. Files over the platform cap are
// rejected before the upload is attempted.
func (r *RealBotAdapter) SendAudio(ctx context.Context, chatID int64, up adapter.AudioUpload) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Stat(up.Path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrDeliveryFailed, up.Path, err)
	}
	if info.Size() > r.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: file is %d bytes, platform limit is %d",
			domain.ErrDeliveryFailed, info.Size(), r.cfg.MaxUploadBytes)
	}

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(up.Path))
	audio.Caption = up.Caption
	audio.Title = up.Title
	audio.Performer = up.Performer
	audio.Duration = up.Duration
	if len(up.ThumbJPEG) > 0 {
		audio.Thumb = tgbotapi.FileBytes{Name: "cover.jpg", Bytes: up.ThumbJPEG}
	}

	if _, err := r.bot.Send(audio); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func statusText(status model.JobStatus, quality model.Quality) string {
	switch status {
	case model.JobResolving:
		return fmt.Sprintf("⏬ Starting download (%s)...", quality)
	case model.JobFetching:
		return "📥 Downloading audio..."
	case model.JobConverting:
		return "🔄 Converting to MP3..."
	case model.JobTagging:
		return "🏷️ Adding metadata and album art..."
	case model.JobUploading:
		return "📤 Uploading to Telegram..."
	default:
		return string(status)
	}
}

// userErrorText translates the pipeline error taxonomy into chat messages.
// Nothing here is fatal to the process.
func userErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return "❌ The music catalog is unreachable right now. Please try again later."
	case errors.Is(err, domain.ErrQualityUnavailable):
		return "❌ That quality is not available for this track."
	case errors.Is(err, domain.ErrDownloadFailed):
		return "❌ Download failed. Please try again."
	case errors.Is(err, domain.ErrDeliveryFailed):
		return "❌ Could not send the file. It may exceed the chat upload size limit."
	case errors.Is(err, domain.ErrRateLimited):
		return "⏳ Too many downloads. Please wait a minute and try again."
	case errors.Is(err, domain.ErrNotFound):
		return "❌ Could not fetch song details. Please search again."
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Please provide a search query.\nExample: /search Kesariya"
	default:
		return "❌ An error occurred. Please try again."
	}
}
