// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manim-studio/internal/config"
	"manim-studio/internal/domain/ports/adapter"
	"manim-studio/internal/domain/ports/repository"
	aiAdapters "manim-studio/internal/infra/adapters/ai"
	pg "manim-studio/internal/infra/db/postgres"
	"manim-studio/internal/infra/logging"
	"manim-studio/internal/infra/metrics"
	red "manim-studio/internal/infra/redis"
	"manim-studio/internal/infra/render"
	"manim-studio/internal/infra/storage"
	"manim-studio/internal/infra/web"
	"manim-studio/internal/infra/worker"
	"manim-studio/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Storage ----
	store := storage.NewFileStore(cfg.Storage.MediaDir, cfg.Storage.OutputDir, cfg.Storage.ScriptsDir)
	if err := store.EnsureDirs(); err != nil {
		logger.Fatal().Err(err).Msg("storage init")
	}

	// ---- Redis job store ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	jobRepo := red.NewJobRepo(redisClient, cfg.Redis.JobTTL)

	// ---- Examples gallery: Postgres when configured, disk scan otherwise ----
	var exampleRepo repository.ExampleRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		exampleRepo = pg.NewExampleRepo(pool)
		logger.Info().Msg("examples backed by postgres")
	} else {
		exampleRepo = storage.NewDiskExampleRepo(store, aiAdapters.SamplePrompts())
		logger.Info().Msg("examples backed by media dir scan")
	}

	// ---- AI generation chain ----
	systemPrompt := aiAdapters.LoadSystemPrompt(cfg.AI.PromptFile)
	byProvider := map[string]adapter.ScriptGenerator{}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, systemPrompt,
			cfg.AI.MaxOutputTokens, cfg.AI.Temperature, cfg.AI.RequestTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		byProvider["openai"] = oa
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI provider: OpenAI")
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.DefaultModel, systemPrompt, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		byProvider["gemini"] = ga
		logger.Info().Str("base", cfg.AI.GeminiURL).Msg("AI provider: Gemini")
	}
	defaultProvider := "openai"
	if cfg.AI.OpenAIKey == "" {
		defaultProvider = "gemini"
	}
	var gen adapter.ScriptGenerator = aiAdapters.NewMultiAdapter(defaultProvider, cfg.AI.DefaultModel, byProvider)
	gen = aiAdapters.NewLimitedGenerator(gen, cfg.AI.ConcurrentLimit)
	gen = aiAdapters.NewFallbackGenerator(gen, cfg.Storage.SamplesDir, logger)

	// ---- Renderer ----
	renderer := render.NewManimRenderer(cfg.Render.Binary, cfg.Storage.OutputDir, cfg.Render.Timeout, logger)

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Worker.Count, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	generationUC := usecase.NewGenerationUseCase(jobRepo, gen, renderer, store, pool, cfg.AI.MaxPromptChars, logger)
	exampleUC := usecase.NewExampleUseCase(exampleRepo)

	// ---- Periodic cleanup of generated artifacts ----
	retention := time.Duration(cfg.Render.RetentionHours) * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := store.CleanupOld(retention); err != nil {
					logger.Warn().Err(err).Msg("cleanup pass failed")
				} else if removed > 0 {
					logger.Info().Int("removed", removed).Msg("cleanup pass")
				}
			}
		}
	}()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.Password, !cfg.Runtime.Dev, cfg.Admin.TokenTTL)
	srv := web.NewServer(cfg, generationUC, exampleUC, store, auth, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
