// Package config centralises configuration parsing for the baby tracker service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the service.
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	HTTPAddress string `env:"HTTP_ADDRESS"`
	DevMode     bool   `env:"DEV_MODE"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgresURL wins over the discrete DB_* parameters when set.
	PostgresURL      string        `env:"POSTGRES_URL"`
	DBUser           string        `env:"DB_USER"`
	DBPassword       string        `env:"DB_PASSWORD"`
	DBHost           string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort           string        `env:"DB_PORT" envDefault:"5432"`
	DBName           string        `env:"DB_NAME"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBIdleTimeout    time.Duration `env:"DB_IDLE_TIMEOUT" envDefault:"30s"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"2s"`

	GeminiAPIKey      string  `env:"GEMINI_API_KEY,required,notEmpty"`
	GeminiModel       string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTemperature float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.5"`

	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"America/New_York"`
	BabyName        string `env:"BABYNAME"`

	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envSeparator:","`
	SchemaRegistryURL  string        `env:"SCHEMA_REGISTRY_URL" envDefault:"http://schema-registry:8081"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"25"`
}

// Load reads a .env file when present, then parses the process environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment into Config without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.KafkaBrokers = splitAndTrim(cfg.KafkaBrokers)
	if cfg.HTTPAddress == "" {
		cfg.HTTPAddress = ":" + cfg.Port
	}
	if cfg.PostgresURL == "" {
		cfg.PostgresURL = cfg.buildPostgresURL()
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be > 0, got %d", cfg.DBMaxConns)
	}
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 25
	}
	return cfg, nil
}

// PublishEvents reports whether record events should be written to the outbox and dispatched.
func (c Config) PublishEvents() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) buildPostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	switch {
	case c.DBUser != "" && c.DBPassword != "":
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	case c.DBUser != "":
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

func splitAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
