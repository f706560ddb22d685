// File: internal/usecase/download_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"telegram-music-downloader/internal/domain"
	"telegram-music-downloader/internal/domain/model"
	"telegram-music-downloader/internal/domain/ports/adapter"
	"telegram-music-downloader/internal/infra/fetch"
	"telegram-music-downloader/internal/infra/logging"
	"telegram-music-downloader/internal/infra/metrics"
)

// Compile-time check
var _ DownloadUseCase = (*downloadUC)(nil)

const coverArtMaxDim = 500

// Progress is called as the job moves through the pipeline so the bot can
// edit its status message in place.
type Progress func(status model.JobStatus)

type DownloadUseCase interface {
	// Run executes resolve -> fetch -> convert -> tag -> deliver for one job.
	// Temp files are removed on every exit path. A tagging failure is not
	// fatal: the untagged file is delivered instead.
	Run(ctx context.Context, job *model.DownloadJob, progress Progress) error
}

type downloadUC struct {
	catalog    adapter.CatalogAdapter
	fetcher    Fetcher
	converter  Converter
	tagger     Tagger
	bot        adapter.TelegramBotAdapter
	dir        string
	prepareArt func(data []byte, maxDim int) ([]byte, error)
	log        *zerolog.Logger
}

func NewDownloadUseCase(
	catalog adapter.CatalogAdapter,
	fetcher Fetcher,
	converter Converter,
	tagger Tagger,
	bot adapter.TelegramBotAdapter,
	dir string,
	prepareArt func(data []byte, maxDim int) ([]byte, error),
	logger *zerolog.Logger,
) *downloadUC {
	return &downloadUC{
		catalog:    catalog,
		fetcher:    fetcher,
		converter:  converter,
		tagger:     tagger,
		bot:        bot,
		dir:        dir,
		prepareArt: prepareArt,
		log:        logger,
	}
}

func (d *downloadUC) Run(ctx context.Context, job *model.DownloadJob, progress Progress) (err error) {
	ctx = logging.WithJobID(ctx, job.ID)
	ctx = logging.WithTrackID(ctx, job.Track.ID)
	log := logging.With(ctx, d.log)
	defer logging.TraceDuration(log, "DownloadUC.Run")()

	if progress == nil {
		progress = func(model.JobStatus) {}
	}

	// Temp files go regardless of how we leave this function.
	defer func() {
		d.cleanup(job)
		if err != nil {
			job.Status = model.JobFailed
			metrics.IncDownload(string(job.Quality), "failed")
		} else {
			job.Status = model.JobDone
			metrics.IncDownload(string(job.Quality), "done")
		}
	}()

	// Resolve. Search results sometimes lack download variants; refresh
	// from the details endpoint before giving up on the tier.
	job.Status = model.JobResolving
	progress(job.Status)
	mediaURL, err := d.resolveURL(ctx, job)
	if err != nil {
		return err
	}

	// Fetch audio and cover art concurrently. Cover art is optional.
	job.Status = model.JobFetching
	progress(job.Status)
	var artwork []byte
	fetchStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		path, ferr := d.fetcher.FetchAudio(gctx, mediaURL, ".m4a")
		if ferr != nil {
			return ferr
		}
		job.RawPath = path
		return nil
	})
	g.Go(func() error {
		imgURL := job.Track.BestImageURL()
		if imgURL == "" {
			return nil
		}
		raw, ferr := d.fetcher.FetchBytes(gctx, imgURL)
		if ferr != nil {
			log.Warn().Err(ferr).Msg("cover art fetch failed")
			return nil
		}
		art, perr := d.prepareArt(raw, coverArtMaxDim)
		if perr != nil {
			log.Warn().Err(perr).Msg("cover art processing failed")
			return nil
		}
		artwork = art
		return nil
	})
	if err = g.Wait(); err != nil {
		return err
	}
	metrics.ObserveStage("fetch", time.Since(fetchStart).Seconds())

	// Convert.
	job.Status = model.JobConverting
	progress(job.Status)
	job.MP3Path = filepath.Join(d.dir, "tmdl-"+job.ID+".mp3")
	convertStart := time.Now()
	if cerr := d.converter.ToMP3(ctx, job.RawPath, job.MP3Path, job.Quality); cerr != nil {
		err = fmt.Errorf("%w: %v", domain.ErrDownloadFailed, cerr)
		return err
	}
	metrics.ObserveStage("convert", time.Since(convertStart).Seconds())

	// Tag, best-effort.
	job.Status = model.JobTagging
	progress(job.Status)
	tagStart := time.Now()
	if terr := d.tagger.Embed(job.MP3Path, job.Track, artwork); terr != nil {
		log.Warn().Err(terr).Msg("tag embed failed, delivering untagged file")
		metrics.IncTagFallback()
	}
	metrics.ObserveStage("tag", time.Since(tagStart).Seconds())

	// Deliver.
	job.Status = model.JobUploading
	progress(job.Status)
	uploadStart := time.Now()
	size := fileSize(job.MP3Path)
	up := adapter.AudioUpload{
		Path:      job.MP3Path,
		FileName:  job.Track.Filename(),
		Caption:   buildCaption(job.Track, job.Quality),
		Title:     truncate(job.Track.Title, 64),
		Performer: truncate(job.Track.Artist(), 64),
		Duration:  job.Track.Duration,
		ThumbJPEG: artwork,
	}
	if err = d.bot.SendAudio(ctx, job.ChatID, up); err != nil {
		if !errors.Is(err, domain.ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
		}
		return err
	}
	metrics.ObserveStage("upload", time.Since(uploadStart).Seconds())
	metrics.AddDeliveredBytes(size)

	log.Info().Str("quality", string(job.Quality)).Int64("bytes", size).Msg("track delivered")
	return nil
}

func (d *downloadUC) resolveURL(ctx context.Context, job *model.DownloadJob) (string, error) {
	if url, err := job.Track.DownloadURL(job.Quality); err == nil {
		return url, nil
	}
	fresh, err := d.catalog.Track(ctx, job.Track.ID)
	if err != nil {
		return "", err
	}
	job.Track = fresh
	return fresh.DownloadURL(job.Quality)
}

func (d *downloadUC) cleanup(job *model.DownloadJob) {
	fetch.Cleanup(d.log, job.RawPath, job.MP3Path)
}

func buildCaption(t *model.Track, q model.Quality) string {
	caption := fmt.Sprintf("🎵 %s\n👤 %s\n💿 %s", t.Title, t.Artist(), t.Album)
	if t.Year != "" {
		caption += "\n📅 " + t.Year
	}
	return caption + "\n📊 " + string(q)
}

// truncate shortens s to at most n runes. Byte slicing would split
// multibyte titles and Telegram rejects invalid UTF-8 outright.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
