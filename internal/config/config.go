package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	BackendBaseURL string        `env:"BACKEND_BASE_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" default:"30s"`
	BackendRPS     float64       `env:"BACKEND_RPS" default:"10"`
	BackendBurst   int           `env:"BACKEND_BURST" default:"20"`

	ItemsCacheTTL    time.Duration `env:"ITEMS_CACHE_TTL" default:"60s"`
	MetaCacheTTL     time.Duration `env:"META_CACHE_TTL" default:"5m"`
	InsightsCacheTTL time.Duration `env:"INSIGHTS_CACHE_TTL" default:"5m"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL" default:"60s"`

	PrincipalName    string `env:"PRINCIPAL_NAME"`
	PrincipalAliases string `env:"PRINCIPAL_ALIASES"` // comma-separated

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"BACKEND_BASE_URL": cfg.BackendBaseURL,
		"PRINCIPAL_NAME":   cfg.PrincipalName,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.BackendRPS <= 0 {
		return fmt.Errorf("BACKEND_RPS must be positive, got %v", cfg.BackendRPS)
	}
	if cfg.BackendBurst < 1 {
		return fmt.Errorf("BACKEND_BURST must be at least 1, got %d", cfg.BackendBurst)
	}
	for name, ttl := range map[string]time.Duration{
		"ITEMS_CACHE_TTL":    cfg.ItemsCacheTTL,
		"META_CACHE_TTL":     cfg.MetaCacheTTL,
		"INSIGHTS_CACHE_TTL": cfg.InsightsCacheTTL,
		"SUMMARY_CACHE_TTL":  cfg.SummaryCacheTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// AliasList splits the comma-separated alias configuration, dropping blanks.
func (c *Config) AliasList() []string {
	var out []string
	for _, alias := range strings.Split(c.PrincipalAliases, ",") {
		if trimmed := strings.TrimSpace(alias); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
