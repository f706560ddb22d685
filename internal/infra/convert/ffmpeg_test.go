package convert

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain/model"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	got := buildArgs("/tmp/in.m4a", "/tmp/out.mp3", model.Quality320)
	want := []string{
		"-i", "/tmp/in.m4a",
		"-b:a", "320k",
		"-ac", "2",
		"-ar", "44100",
		"-codec:a", "libmp3lame",
		"-y",
		"/tmp/out.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgs = %v", got)
	}

	got = buildArgs("in", "out", model.Quality128)
	if got[3] != "128k" {
		t.Fatalf("128 tier bitrate = %q", got[3])
	}
}

func TestTrimStderr(t *testing.T) {
	t.Parallel()

	if got := trimStderr(nil); got != "unknown error" {
		t.Fatalf("empty stderr: %q", got)
	}
	if got := trimStderr([]byte("  short error\n")); got != "short error" {
		t.Fatalf("short stderr: %q", got)
	}
	long := strings.Repeat("x", 300) + "tail"
	got := trimStderr([]byte(long))
	if len(got) != 200 || !strings.HasSuffix(got, "tail") {
		t.Fatalf("long stderr not trimmed to tail: len=%d", len(got))
	}
}

func TestCheckMissingBinary(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	c := NewConverter(&config.DownloadConfig{
		FFmpegPath:     "/nonexistent/ffmpeg",
		ConvertTimeout: time.Second,
	}, &logger)

	if err := c.Check(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestToMP3MissingBinary(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	c := NewConverter(&config.DownloadConfig{
		FFmpegPath:     "/nonexistent/ffmpeg",
		ConvertTimeout: time.Second,
	}, &logger)

	if err := c.ToMP3(context.Background(), "in.m4a", "out.mp3", model.Quality320); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
