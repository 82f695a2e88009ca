// /internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	TransportDiscord  = "discord"
	TransportTelegram = "telegram"

	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config is the process configuration read from the environment (and .env when present).
// Reply tuning lives in Tuning, loaded from TuningPath.
type Config struct {
	Transport     string        `env:"TRANSPORT" envDefault:"discord"`
	DiscordToken  string        `env:"DISCORD_TOKEN"`
	TelegramToken string        `env:"TELEGRAM_TOKEN"`
	DeveloperID   string        `env:"DEVELOPER_ID"`
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"json"`
	StoragePath   string        `env:"STORAGE_PATH" envDefault:"data/memory.json"`
	TuningPath    string        `env:"TUNING_PATH" envDefault:"data/tuning.yaml"`
	AutoSave      time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"10s"`
	MetricsAddr   string        `env:"METRICS_ADDR"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string        `env:"LOG_FILE"`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	return &cfg, nil
}

// New loads the configuration and exits the process when it is unusable.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	return cfg
}

// Validate checks that the selected transport has a token and the storage driver is known.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportDiscord:
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is not set")
		}
	case TransportTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	switch c.StorageDriver {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StoragePath == "" {
		return fmt.Errorf("STORAGE_PATH is empty")
	}
	if c.AutoSave <= 0 {
		return fmt.Errorf("AUTOSAVE_INTERVAL must be positive, got %s", c.AutoSave)
	}
	return nil
}
