package config_test

import (
	"testing"

	"vendsync/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(".")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://www.vendus.pt/ws/v1.1", cfg.Vendus.BaseURL)
	assert.Equal(t, 100, cfg.Vendus.PerPage)
	assert.Equal(t, 3, cfg.Vendus.MaxRetries)
	assert.Equal(t, "ref-", cfg.Shopify.TagPrefix)
	assert.Equal(t, "default", cfg.Sync.Scope)
	assert.Equal(t, "file", cfg.Sync.SnapshotBackend)
	assert.Equal(t, 1000, cfg.Sync.MaxPages)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("VENDUS_API_KEY", "env-key")
	t.Setenv("SYNC_INTERVAL_MINUTES", "30")
	t.Setenv("SHOPIFY_TAG_PREFIX", "vnd-")

	cfg, err := config.LoadConfig(".")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Vendus.APIKey)
	assert.Equal(t, 30, cfg.Sync.IntervalMinutes)
	assert.Equal(t, "vnd-", cfg.Shopify.TagPrefix)
}
