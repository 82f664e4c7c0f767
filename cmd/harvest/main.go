// One-shot harvest without the bot: runs a single pass, upserts into the
// store and writes the JSON export. Useful for cron or debugging selectors.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-opportunity-hunter/internal/browser"
	"go-opportunity-hunter/internal/config"
	"go-opportunity-hunter/internal/database"
	"go-opportunity-hunter/internal/export"
	"go-opportunity-hunter/internal/harvest"
)

func main() {
	cfg := config.Load()
	cfg.RequireDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL, cfg.Platform)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Schema setup failed: %v", err)
	}

	pwManager, err := browser.NewPlaywright(*cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()

	harvester := harvest.New(cfg, harvest.Deps{
		Sessions: pwManager,
		Sink:     repo,
		Exporter: export.NewJSONExporter(cfg.ExportPath),
	})

	listings, err := harvester.Run(ctx, harvest.TriggerManual)
	if err != nil {
		log.Fatalf("❌ Harvest failed: %v", err)
	}

	failed := 0
	for _, l := range listings {
		if l.EnrichmentFailed {
			failed++
		}
	}
	log.Printf("✅ Done: %d listings harvested, %d without details", len(listings), failed)
}
