package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`
	TelegramSendRate    int    `env:"TELEGRAM_SEND_RATE,default=25"`
	TelegramSendBurst   int    `env:"TELEGRAM_SEND_BURST,default=5"`

	AlertAPIURL     string        `env:"ALERT_API_URL,default=http://127.0.0.1:8000"`
	AlertAPITimeout time.Duration `env:"ALERT_API_TIMEOUT,default=10s"`

	// Submitter ids are issued by the alert service. Telegram accounts not
	// listed in AlertUserIDs submit as AlertDefaultUserID; 0 refuses them.
	AlertDefaultUserID int64           `env:"ALERT_DEFAULT_USER_ID,default=1"`
	AlertUserIDs       map[int64]int64 `env:"ALERT_USER_IDS"`

	CatalogMenuSize int `env:"CATALOG_MENU_SIZE,default=12"`

	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
