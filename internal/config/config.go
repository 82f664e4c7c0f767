// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`

	//Target site
	ListingURL string `yaml:"listing_url"`
	Platform   string `yaml:"platform"`

	//Harvest timings (milliseconds in yaml for easy tuning)
	NavTimeoutMs     int `yaml:"nav_timeout_ms"`
	ScrollBudgetMs   int `yaml:"scroll_budget_ms"`
	ScrollStepPx     int `yaml:"scroll_step_px"`
	ScrollIntervalMs int `yaml:"scroll_interval_ms"`
	SettleDelayMs    int `yaml:"settle_delay_ms"`
	ItemDelayMs      int `yaml:"item_delay_ms"`

	//Notification batching
	BatchSize    int `yaml:"batch_size"`
	BatchDelayMs int `yaml:"batch_delay_ms"`

	//Scheduling
	HarvestIntervalMin int `yaml:"harvest_interval_min"`

	//Paths
	CachePath  string `yaml:"cache_path"`
	ExportPath string `yaml:"export_path"`

	Headless *bool `yaml:"headless"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", path, err)
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	cfg.ApplyDefaults()

	return cfg
}

// RequireTelegram fatals unless the bot credentials are configured.
func (c *Config) RequireTelegram() {
	if c.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		log.Fatal("TELEGRAM_CHAT_ID is required")
	}
}

// RequireDatabase fatals unless the store is configured.
func (c *Config) RequireDatabase() {
	if c.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
}

func (c *Config) ApplyDefaults() {
	if c.ListingURL == "" {
		c.ListingURL = "https://earn.superteam.fun/all/"
	}
	if c.Platform == "" {
		c.Platform = "superteam"
	}
	if c.NavTimeoutMs == 0 {
		c.NavTimeoutMs = 120000
	}
	if c.ScrollBudgetMs == 0 {
		c.ScrollBudgetMs = 30000
	}
	if c.ScrollStepPx == 0 {
		c.ScrollStepPx = 100
	}
	if c.ScrollIntervalMs == 0 {
		c.ScrollIntervalMs = 100
	}
	if c.SettleDelayMs == 0 {
		c.SettleDelayMs = 2000
	}
	if c.ItemDelayMs == 0 {
		c.ItemDelayMs = 1000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.BatchDelayMs == 0 {
		c.BatchDelayMs = 1000
	}
	if c.HarvestIntervalMin == 0 {
		c.HarvestIntervalMin = 30
	}
	if c.CachePath == "" {
		c.CachePath = ".cache"
	}
	if c.ExportPath == "" {
		c.ExportPath = "logs"
	}
	if c.Headless == nil {
		headless := true
		c.Headless = &headless
	}
}

func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}

func (c *Config) ScrollBudget() time.Duration {
	return time.Duration(c.ScrollBudgetMs) * time.Millisecond
}

func (c *Config) ScrollInterval() time.Duration {
	return time.Duration(c.ScrollIntervalMs) * time.Millisecond
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c *Config) ItemDelay() time.Duration {
	return time.Duration(c.ItemDelayMs) * time.Millisecond
}

func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

func (c *Config) HarvestInterval() time.Duration {
	return time.Duration(c.HarvestIntervalMin) * time.Minute
}
