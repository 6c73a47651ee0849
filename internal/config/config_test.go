//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
redis:
  url: localhost:6379
ai:
  openai_key: sk-test
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.AI.DefaultModel == "" || cfg.AI.MaxPromptChars != 500 {
		t.Errorf("ai defaults not applied: %+v", cfg.AI)
	}
	if cfg.Render.Timeout != 2*time.Minute {
		t.Errorf("render timeout = %s", cfg.Render.Timeout)
	}
	if cfg.Redis.JobTTL != time.Hour {
		t.Errorf("job ttl = %s", cfg.Redis.JobTTL)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag lost")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_origins: ["http://localhost:3000"]
redis:
  url: localhost:6379
  job_ttl: 10m
ai:
  gemini_key: g-test
  default_model: gemini-1.5-pro
  max_prompt_chars: 200
render:
  quality: high
  timeout: 5m
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.AI.DefaultModel != "gemini-1.5-pro" || cfg.AI.MaxPromptChars != 200 {
		t.Errorf("ai = %+v", cfg.AI)
	}
	if cfg.Redis.JobTTL != 10*time.Minute {
		t.Errorf("job ttl = %s", cfg.Redis.JobTTL)
	}
	if cfg.Render.Quality != "high" || cfg.Render.Timeout != 5*time.Minute {
		t.Errorf("render = %+v", cfg.Render)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing redis", func(t *testing.T) {
		path := writeConfig(t, "ai:\n  openai_key: sk-test\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("config without redis.url must be rejected")
		}
	})
	t.Run("no AI provider", func(t *testing.T) {
		path := writeConfig(t, "redis:\n  url: localhost:6379\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("config without any AI key must be rejected")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nope/config.yaml", false); err == nil {
			t.Fatal("missing file must error")
		}
	})
}
