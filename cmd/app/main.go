// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-music-downloader/internal/application"
	"telegram-music-downloader/internal/config"
	"telegram-music-downloader/internal/domain/ports/repository"
	"telegram-music-downloader/internal/infra/catalog"
	"telegram-music-downloader/internal/infra/convert"
	"telegram-music-downloader/internal/infra/fetch"
	"telegram-music-downloader/internal/infra/imaging"
	"telegram-music-downloader/internal/infra/logging"
	"telegram-music-downloader/internal/infra/memory"
	"telegram-music-downloader/internal/infra/metrics"
	red "telegram-music-downloader/internal/infra/redis"
	"telegram-music-downloader/internal/infra/tag"
	tele "telegram-music-downloader/internal/infra/telegram"
	"telegram-music-downloader/internal/infra/web"
	"telegram-music-downloader/internal/infra/worker"
	"telegram-music-downloader/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis (optional) ----
	var sessions repository.SessionRepository
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		sessions = red.NewSessionRepo(redisClient, cfg.Redis.TTL)
		rateLimiter = red.NewRateLimiter(redisClient)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("sessions backed by redis")
	} else {
		sessions = memory.NewSessionRepo(cfg.Redis.TTL)
		logger.Info().Msg("redis not configured, sessions kept in memory")
	}

	// ---- Pipeline services ----
	if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create downloads dir")
	}
	catalogClient := catalog.NewClient(&cfg.Catalog, logger)
	fetcher := fetch.NewFetcher(&cfg.Download, logger)
	converter := convert.NewConverter(&cfg.Download, logger)
	tagger := tag.NewTagger()

	checkCtx, checkCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := converter.Check(checkCtx); err != nil {
		logger.Error().Err(err).Msg("ffmpeg check failed, conversions will not work")
	}
	checkCancel()

	// ---- Worker pool for download jobs ----
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases + facade ----
	searchUC := usecase.NewSearchUseCase(catalogClient, sessions)
	facade := application.NewBotFacade(searchUC, nil)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, rateLimiter, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	downloadUC := usecase.NewDownloadUseCase(
		catalogClient, fetcher, converter, tagger,
		botAdapter, cfg.Download.Dir, imaging.PrepareCoverArt, logger,
	)
	facade.DownloadUC = downloadUC

	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops HTTP server ----
	opsSrv := web.NewServer(cfg.Web.AdminSecret, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Web.Port), Handler: opsSrv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	botAdapter.StopPolling()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
