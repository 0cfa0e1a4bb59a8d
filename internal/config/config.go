// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/benvon/cinemate/internal/validation"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Export targets
const (
	ExportNone = ""
	ExportFile = "file"
	ExportS3   = "s3"
)

// Config holds application configuration
type Config struct {
	ServerPort      string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL         string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL     string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	EnableHSTS      bool   `env:"ENABLE_HSTS" envDefault:"false"`
	ServerDebugMode bool   `env:"SERVER_DEBUG_MODE" envDefault:"false"`
	WorkerDebugMode bool   `env:"WORKER_DEBUG_MODE" envDefault:"false"`
	MaxRequestBytes int64  `env:"MAX_REQUEST_BYTES" envDefault:"1048576"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Domains
	DefaultDomain string `env:"DEFAULT_DOMAIN" envDefault:"movie"`
	DomainsFile   string `env:"DOMAINS_FILE"`

	// Sessions live in Redis when REDIS_URL is set, in memory otherwise
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	JanitorEvery   time.Duration `env:"SESSION_JANITOR_INTERVAL" envDefault:"1m"`
	RedisURL       string        `env:"REDIS_URL"`
	RateLimit      string        `env:"RATE_LIMIT" envDefault:"10-S"`
	RateLimitPoll  time.Duration `env:"RATE_LIMIT_RELOAD_INTERVAL" envDefault:"30s"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RabbitMQURL    string        `env:"RABBITMQ_URL"`
	RabbitPrefetch int           `env:"RABBITMQ_PREFETCH" envDefault:"10"`
	DLQRetention   time.Duration `env:"DLQ_RETENTION" envDefault:"24h"`
	StatsSchedule  string        `env:"STATS_SCHEDULE" envDefault:"@every 1m"`

	// Export destination: a local directory or an S3 bucket, not both
	ExportDir      string `env:"EXPORT_DIR"`
	ExportS3Bucket string `env:"EXPORT_S3_BUCKET"`
	ExportS3Prefix string `env:"EXPORT_S3_PREFIX" envDefault:"interactions"`
	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`

	// Explanations use the template unless an API key is set
	OpenAIKey string `env:"OPENAI_API_KEY"`
	AIModel   string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	AIBaseURL string `env:"AI_BASE_URL"`

	OTELEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads an optional .env file, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot
func (c *Config) Validate() error {
	var errs []error
	if err := validation.ValidateDomainName(c.DefaultDomain); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_DOMAIN: %w", err))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.JanitorEvery <= 0 {
		errs = append(errs, errors.New("SESSION_JANITOR_INTERVAL must be positive"))
	}
	if c.RabbitPrefetch < 1 {
		errs = append(errs, errors.New("RABBITMQ_PREFETCH must be at least 1"))
	}
	if c.ExportDir != "" && c.ExportS3Bucket != "" {
		errs = append(errs, errors.New("set either EXPORT_DIR or EXPORT_S3_BUCKET, not both"))
	}
	if c.OTELEnabled && c.OTELEndpoint == "" {
		errs = append(errs, errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set"))
	}
	if c.OTELSampleRatio < 0 || c.OTELSampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1"))
	}
	if strings.TrimSpace(c.RateLimit) == "" {
		errs = append(errs, errors.New("RATE_LIMIT must not be empty"))
	}
	return errors.Join(errs...)
}

// ExportTarget reports where exports go
func (c *Config) ExportTarget() string {
	switch {
	case c.ExportS3Bucket != "":
		return ExportS3
	case c.ExportDir != "":
		return ExportFile
	default:
		return ExportNone
	}
}

// ExplanationsViaLLM reports whether an OpenAI-compatible API is configured
func (c *Config) ExplanationsViaLLM() bool {
	return c.OpenAIKey != ""
}
