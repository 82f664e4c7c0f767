package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-opportunity-hunter/internal/browser"
	"go-opportunity-hunter/internal/config"
	"go-opportunity-hunter/internal/database"
	"go-opportunity-hunter/internal/dedup"
	"go-opportunity-hunter/internal/export"
	"go-opportunity-hunter/internal/harvest"
	"go-opportunity-hunter/internal/scheduler"
	"go-opportunity-hunter/internal/telegram"
)

func main() {
	//load config
	cfg := config.Load()
	cfg.RequireTelegram()
	cfg.RequireDatabase()
	log.Printf("🔧 Config loaded. Target: %s", cfg.ListingURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//connect the store
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL, cfg.Platform)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Schema setup failed: %v", err)
	}
	log.Println("🗄️ Database ready.")

	//init playwright manager
	pwManager, err := browser.NewPlaywright(*cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()
	log.Println("✅ Browser initialized successfully!")

	//init telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, repo)
	if err != nil {
		log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
	}

	//wire the harvester: bot delivers the batches, repo is the sink
	harvester := harvest.New(cfg, harvest.Deps{
		Sessions: pwManager,
		Sink:     repo,
		Notifier: bot,
		Cache:    dedup.NewSeenCache(cfg.CachePath),
		Exporter: export.NewJSONExporter(cfg.ExportPath),
	})
	bot.SetHarvester(harvester)

	//scheduled harvests run until shutdown
	go scheduler.Every(ctx, cfg.HarvestInterval(), "harvest", func(ctx context.Context) error {
		_, err := harvester.Run(ctx, harvest.TriggerScheduled)
		return err
	})

	//bot update loop blocks until SIGINT/SIGTERM
	bot.Run(ctx)
	log.Println("🏁 Bot stopped.")
}
