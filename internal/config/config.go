package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton, kept for call sites that predate dependency injection.
var globalConfig *Config

// Config holds all environment backed configuration for the interview API.
type Config struct {
	// HTTP Server
	HTTPPort    int `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9091"`

	// PostgreSQL
	DatabaseURL          string `env:"DATABASE_URL,notEmpty"`
	DBPostgresqlReadDSN  string `env:"DB_POSTGRESQL_READ_DSN"`
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN"`

	// Auth
	JWKSURL             string        `env:"JWKS_URL,notEmpty"`
	Issuer              string        `env:"ISSUER,notEmpty"`
	Audience            string        `env:"AUDIENCE,notEmpty"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	AuthClockSkew       time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Model gateway
	ModelBaseURL     string        `env:"MODEL_BASE_URL,notEmpty"`
	ModelAPIKey      string        `env:"MODEL_API_KEY"`
	ModelID          string        `env:"MODEL_ID" envDefault:"gpt-4o-mini"`
	ModelTemperature float32       `env:"MODEL_TEMPERATURE" envDefault:"0.7"`
	ModelMaxTokens   int           `env:"MODEL_MAX_TOKENS" envDefault:"300"`
	ModelTimeout     time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`

	// Rate limiting
	TurnRateLimitPerMinute    int `env:"TURN_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	PreviewRateLimitPerMinute int `env:"PREVIEW_RATE_LIMIT_PER_MINUTE" envDefault:"5"`

	// Background jobs
	RateBucketPruneIntervalMinutes int           `env:"RATE_BUCKET_PRUNE_INTERVAL_MINUTES" envDefault:"60"`
	PreviewSweepIntervalMinutes    int           `env:"PREVIEW_SWEEP_INTERVAL_MINUTES" envDefault:"30"`
	EnrichmentTimeout              time.Duration `env:"ENRICHMENT_TIMEOUT" envDefault:"60s"`

	// Survey catalogue bootstrap
	SurveyCatalogFile string `env:"SURVEY_CATALOG_FILE" envDefault:"config/surveys.yaml"`

	// Observability / Logging
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"interview-api"`
	ServiceNamespace string        `env:"SERVICE_NAMESPACE" envDefault:"pulse"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("invalid JWKS_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.ModelBaseURL); err != nil {
		return nil, fmt.Errorf("invalid MODEL_BASE_URL: %w", err)
	}
	if cfg.TurnRateLimitPerMinute <= 0 || cfg.PreviewRateLimitPerMinute <= 0 {
		return nil, errors.New("rate limits must be positive")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg
	return cfg, nil
}

// GetDatabaseWriteDSN returns the write DSN, falling back to DATABASE_URL.
func (c *Config) GetDatabaseWriteDSN() string {
	if c.DBPostgresqlWriteDSN != "" {
		return c.DBPostgresqlWriteDSN
	}
	return c.DatabaseURL
}

// GetDatabaseReadDSN returns the read replica DSN, empty when reads go to
// the writer.
func (c *Config) GetDatabaseReadDSN() string {
	return c.DBPostgresqlReadDSN
}

// GetGlobal returns the global config instance.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
