package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.AlertAPIURL)
	assert.Equal(t, 10*time.Second, cfg.AlertAPITimeout)
	assert.Equal(t, int64(1), cfg.AlertDefaultUserID)
	assert.Equal(t, 60, cfg.TelegramPollTimeout)
	assert.Equal(t, 12, cfg.CatalogMenuSize)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"TELEGRAM_BOT_TOKEN":    "token",
		"ALERT_API_URL":         "https://alerts.example.com",
		"ALERT_API_TIMEOUT":     "3s",
		"ALERT_DEFAULT_USER_ID": "0",
		"ALERT_USER_IDS":        "100:7,200:8",
		"METRICS_ADDR":          ":9090",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://alerts.example.com", cfg.AlertAPIURL)
	assert.Equal(t, 3*time.Second, cfg.AlertAPITimeout)
	assert.Equal(t, int64(0), cfg.AlertDefaultUserID)
	assert.Equal(t, map[int64]int64{100: 7, 200: 8}, cfg.AlertUserIDs)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadRequiresToken(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}
