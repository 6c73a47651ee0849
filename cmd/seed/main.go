// Seeds the examples gallery table from the media directory scan.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"manim-studio/internal/config"
	aiAdapters "manim-studio/internal/infra/adapters/ai"
	pg "manim-studio/internal/infra/db/postgres"
	"manim-studio/internal/infra/storage"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url is required for seeding")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := storage.NewFileStore(cfg.Storage.MediaDir, cfg.Storage.OutputDir, cfg.Storage.ScriptsDir)
	diskRepo := storage.NewDiskExampleRepo(store, aiAdapters.SamplePrompts())
	pgRepo := pg.NewExampleRepo(pool)

	items, err := diskRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("scan media dir: %v", err)
	}
	if len(items) == 0 {
		fmt.Println("no sample videos found under", cfg.Storage.MediaDir)
		return
	}

	seeded := 0
	for _, item := range items {
		if err := pgRepo.Save(ctx, item); err != nil {
			log.Fatalf("seed %q: %v", item.Title, err)
		}
		seeded++
		fmt.Printf("  - %s (%s) %s\n", item.Title, item.Category, item.VideoURL)
	}
	fmt.Printf("%d examples seeded.\n", seeded)
}
