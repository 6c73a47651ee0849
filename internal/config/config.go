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

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	OpenAIKey       string        `yaml:"openai_key"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	DefaultModel    string        `yaml:"default_model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Temperature     float64       `yaml:"temperature"`
	MaxPromptChars  int           `yaml:"max_prompt_chars"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	PromptFile      string        `yaml:"prompt_file"` // system prompt template
}

type RenderConfig struct {
	Binary         string        `yaml:"binary"`  // manim executable
	Quality        string        `yaml:"quality"` // low|medium|high
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	RetentionHours int           `yaml:"retention_hours"` // generated file cleanup window
}

type StorageConfig struct {
	MediaDir   string `yaml:"media_dir"`   // pre-rendered sample videos
	OutputDir  string `yaml:"output_dir"`  // freshly rendered videos
	ScriptsDir string `yaml:"scripts_dir"` // generated scene scripts
	SamplesDir string `yaml:"samples_dir"` // fallback sample scripts
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	JobTTL   time.Duration `yaml:"job_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // optional; examples fall back to disk scan when empty
}

type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Password  string        `yaml:"password"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	Render   RenderConfig   `yaml:"render"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Worker   WorkerConfig   `yaml:"worker"`

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
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("at least one of ai.openai_key or ai.gemini_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-2024-08-06"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4000
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.3
	}
	if cfg.AI.MaxPromptChars <= 0 {
		cfg.AI.MaxPromptChars = 500
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 3
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 30 * time.Second
	}
	if cfg.Render.Binary == "" {
		cfg.Render.Binary = "manim"
	}
	if cfg.Render.Quality == "" {
		cfg.Render.Quality = "medium"
	}
	if cfg.Render.Timeout <= 0 {
		cfg.Render.Timeout = 2 * time.Minute
	}
	if cfg.Render.MaxConcurrent <= 0 {
		cfg.Render.MaxConcurrent = 3
	}
	if cfg.Render.RetentionHours <= 0 {
		cfg.Render.RetentionHours = 24
	}
	if cfg.Storage.MediaDir == "" {
		cfg.Storage.MediaDir = "media"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "output"
	}
	if cfg.Storage.ScriptsDir == "" {
		cfg.Storage.ScriptsDir = "generated"
	}
	if cfg.Storage.SamplesDir == "" {
		cfg.Storage.SamplesDir = "output-scripts"
	}
	if cfg.Redis.JobTTL <= 0 {
		cfg.Redis.JobTTL = time.Hour
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
}
