// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token          string `yaml:"token"`
	Workers        int    `yaml:"workers"` // concurrent update handlers
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	// DownloadsPerWindow limits downloads per user inside RateWindow.
	DownloadsPerWindow int           `yaml:"downloads_per_window"`
	RateWindow         time.Duration `yaml:"rate_window"`
}

type CatalogConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	UserAgent  string        `yaml:"user_agent"`
}

type DownloadConfig struct {
	Dir            string        `yaml:"dir"`       // temp dir for in-flight files
	MaxBytes       int64         `yaml:"max_bytes"` // per-fetch size bound
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	FFmpegPath     string        `yaml:"ffmpeg_path"`
	ConvertTimeout time.Duration `yaml:"convert_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables Redis, sessions fall back to memory
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type WebConfig struct {
	Port        int    `yaml:"port"`
	AdminSecret string `yaml:"admin_secret"` // HMAC secret for the ops session cookie
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Download DownloadConfig `yaml:"download"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Web      WebConfig      `yaml:"web"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides for container deployments.
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}

	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (config or BOT_TOKEN)")
	}
	if cfg.Catalog.BaseURL == "" {
		return nil, errors.New("catalog.base_url is required (config or CATALOG_BASE_URL)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.MaxUploadBytes <= 0 {
		cfg.Bot.MaxUploadBytes = 50 << 20 // Telegram bot API upload cap
	}
	if cfg.Bot.DownloadsPerWindow <= 0 {
		cfg.Bot.DownloadsPerWindow = 5
	}
	if cfg.Bot.RateWindow <= 0 {
		cfg.Bot.RateWindow = time.Minute
	}
	if cfg.Catalog.Timeout <= 0 {
		cfg.Catalog.Timeout = 30 * time.Second
	}
	if cfg.Catalog.MaxRetries <= 0 {
		cfg.Catalog.MaxRetries = 3
	}
	if cfg.Catalog.UserAgent == "" {
		cfg.Catalog.UserAgent = "telegram-music-downloader"
	}
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = os.TempDir()
	}
	if cfg.Download.MaxBytes <= 0 {
		cfg.Download.MaxBytes = 100 << 20
	}
	if cfg.Download.FetchTimeout <= 0 {
		cfg.Download.FetchTimeout = 60 * time.Second
	}
	if cfg.Download.FFmpegPath == "" {
		cfg.Download.FFmpegPath = "ffmpeg"
	}
	if cfg.Download.ConvertTimeout <= 0 {
		cfg.Download.ConvertTimeout = 5 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
}
