package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "https://earn.superteam.fun/all/", cfg.ListingURL)
	assert.Equal(t, "superteam", cfg.Platform)
	assert.Equal(t, 120*time.Second, cfg.NavTimeout())
	assert.Equal(t, 100, cfg.ScrollStepPx)
	assert.Equal(t, 100*time.Millisecond, cfg.ScrollInterval())
	assert.Equal(t, 2*time.Second, cfg.SettleDelay())
	assert.Equal(t, time.Second, cfg.ItemDelay())
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchDelay())
	assert.Equal(t, 30*time.Minute, cfg.HarvestInterval())
	assert.Equal(t, ".cache", cfg.CachePath)
	assert.Equal(t, "logs", cfg.ExportPath)
	require.NotNil(t, cfg.Headless)
	assert.True(t, *cfg.Headless)
}

func TestApplyDefaultsReplacesNonPositiveBatchSize(t *testing.T) {
	cfg := &Config{BatchSize: -5}
	cfg.ApplyDefaults()
	assert.Equal(t, 10, cfg.BatchSize)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	headless := false
	cfg := &Config{
		ListingURL: "https://other.example/feed/",
		BatchSize:  5,
		Headless:   &headless,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "https://other.example/feed/", cfg.ListingURL)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.False(t, *cfg.Headless)
}

func TestLoadYamlWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
telegram_token: from-yaml
telegram_chat_id: 1
listing_url: https://yaml.example/all/
batch_size: 7
`), 0644))

	t.Setenv("CONFIG_PATH", yamlPath)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg := Load()

	//env wins over yaml for credentials
	assert.Equal(t, "from-env", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	//yaml values survive where no env override exists
	assert.Equal(t, "https://yaml.example/all/", cfg.ListingURL)
	assert.Equal(t, 7, cfg.BatchSize)
	//defaults fill the rest
	assert.Equal(t, 120000, cfg.NavTimeoutMs)
}

func TestLoadMissingYamlFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "https://earn.superteam.fun/all/", cfg.ListingURL)
	assert.Equal(t, 10, cfg.BatchSize)
}
