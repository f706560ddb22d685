// File: internal/infra/convert/ffmpeg.go
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain/model"
)

// Converter shells out to ffmpeg to transcode fetched audio into MP3.
type Converter struct {
	binary  string
	timeout time.Duration
	log     *zerolog.Logger
}

func NewConverter(cfg *config.DownloadConfig, logger *zerolog.Logger) *Converter {
	return &Converter{
		binary:  cfg.FFmpegPath,
		timeout: cfg.ConvertTimeout,
		log:     logger,
	}
}

// Check verifies the ffmpeg binary is runnable. Called once at startup.
func (c *Converter) Check(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.binary, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not available at %q: %w", c.binary, err)
	}
	return nil
}

// buildArgs assembles the transcode invocation: stereo 44.1kHz MP3 at the
// tier's bitrate, overwriting the output without prompting.
func buildArgs(inputPath, outputPath string, quality model.Quality) []string {
	return []string{
		"-i", inputPath,
		"-b:a", quality.Bitrate(),
		"-ac", "2",
		"-ar", "44100",
		"-codec:a", "libmp3lame",
		"-y",
		outputPath,
	}
}

// ToMP3 converts inputPath into an MP3 at outputPath. A non-zero exit
// surfaces the trimmed ffmpeg stderr.
func (c *Converter) ToMP3(ctx context.Context, inputPath, outputPath string, quality model.Quality) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, buildArgs(inputPath, outputPath, quality)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("ffmpeg timed out after %s", c.timeout)
		}
		return fmt.Errorf("ffmpeg: %s", trimStderr(stderr.Bytes()))
	}

	c.log.Debug().Str("output", outputPath).Str("bitrate", quality.Bitrate()).
		Dur("elapsed", time.Since(start)).Msg("converted to mp3")
	return nil
}

func trimStderr(b []byte) string {
	s := string(bytes.TrimSpace(b))
	if len(s) > 200 {
		s = s[len(s)-200:]
	}
	if s == "" {
		s = "unknown error"
	}
	return s
}
