package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MAX_CONCURRENCY", "BATCH_TIMEOUT_SEC", "API_RATE_LIMIT", "LEGACY_OCCUPANCY_SENTINEL", "DEFAULT_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 300*time.Second, cfg.BatchTimeout)
	assert.Equal(t, 50.0, cfg.APIRateLimit)
	assert.False(t, cfg.LegacyOccupancySentinel)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "16")
	t.Setenv("BATCH_TIMEOUT_SEC", "30")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("LEGACY_OCCUPANCY_SENTINEL", "true")
	t.Setenv("CSV_FILE_PATH", "/tmp/out.csv")

	cfg := Load()

	assert.Equal(t, 16, cfg.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.BatchTimeout)
	assert.Equal(t, 2.5, cfg.APIRateLimit)
	assert.True(t, cfg.LegacyOccupancySentinel)
	assert.Equal(t, "/tmp/out.csv", cfg.CSVFilePath)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "many")
	t.Setenv("LEGACY_OCCUPANCY_SENTINEL", "maybe")

	cfg := Load()

	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.False(t, cfg.LegacyOccupancySentinel)
}
