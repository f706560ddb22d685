package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
catalog:
  base_url: "https://api.example.com/api"
`)

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Bot.Workers != 8 {
		t.Fatalf("default workers = %d", cfg.Bot.Workers)
	}
	if cfg.Bot.MaxUploadBytes != 50<<20 {
		t.Fatalf("default upload cap = %d", cfg.Bot.MaxUploadBytes)
	}
	if cfg.Catalog.MaxRetries != 3 {
		t.Fatalf("default retries = %d", cfg.Catalog.MaxRetries)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("default log config = %+v", cfg.Log)
	}
	if cfg.Redis.TTL != 15*time.Minute {
		t.Fatalf("default redis ttl = %s", cfg.Redis.TTL)
	}
	if !cfg.Runtime.Dev {
		t.Fatal("dev flag not carried into runtime config")
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `
catalog:
  base_url: "https://api.example.com/api"
`)
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected error for missing bot token")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "from-file"
catalog:
  base_url: "https://file.example.com"
`)
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("CATALOG_BASE_URL", "https://env.example.com")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "from-env" {
		t.Fatalf("token = %q", cfg.Bot.Token)
	}
	if cfg.Catalog.BaseURL != "https://env.example.com" {
		t.Fatalf("base url = %q", cfg.Catalog.BaseURL)
	}
}

func TestLoadConfigUnreadableFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("expected error for missing file")
	}
}
