package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName            string        `env:"APP_NAME"              envDefault:"HoardToken"`
	AppEnv             string        `env:"APP_ENV"               envDefault:"development"`
	Port               string        `env:"PORT"                  envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL"             envDefault:"info"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RedisURL           string        `env:"REDIS_URL"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS"         envSeparator:","`
	KafkaTopic         string        `env:"KAFKA_TOPIC"           envDefault:"token.events"`
	ShutdownPeriod     time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"10s"`
	ShutdownSeconds    int           `env:"SHUTDOWN_TIMEOUT_SECONDS"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"       envDefault:"24h"`
	IdempotencySeconds int           `env:"IDEMPOTENCY_TTL_SECONDS"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	MetricsNamespace   string        `env:"METRICS_NAMESPACE"     envDefault:"hoard_token"`
}

// Load reads an optional .env file, then the environment, and populates a Config instance.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	// *_SECONDS forms take precedence over duration strings.
	if cfg.ShutdownSeconds > 0 {
		cfg.ShutdownPeriod = time.Duration(cfg.ShutdownSeconds) * time.Second
	}
	if cfg.IdempotencySeconds > 0 {
		cfg.IdempotencyTTL = time.Duration(cfg.IdempotencySeconds) * time.Second
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}
	return cfg, nil
}

// IsDev reports whether the service runs in a development environment, where Postgres and
// Redis are optional.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
