package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		envVars     map[string]string
		expectError string
		validate    func(*testing.T, *Config)
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "8080" {
					t.Errorf("Expected default ServerPort to be '8080', got '%s'", cfg.ServerPort)
				}
				if cfg.FrontendURL != "http://localhost:3000" {
					t.Errorf("Expected default FrontendURL to be 'http://localhost:3000', got '%s'", cfg.FrontendURL)
				}
				if cfg.DefaultDomain != "movie" {
					t.Errorf("Expected default domain 'movie', got '%s'", cfg.DefaultDomain)
				}
				if cfg.SessionTTL != 30*time.Minute {
					t.Errorf("Expected default SessionTTL 30m, got %v", cfg.SessionTTL)
				}
				if cfg.RedisURL != "" || cfg.DatabaseURL != "" || cfg.RabbitMQURL != "" {
					t.Error("Expected external services to be optional")
				}
				if cfg.StatsSchedule != "@every 1m" {
					t.Errorf("Expected default StatsSchedule '@every 1m', got '%s'", cfg.StatsSchedule)
				}
				if cfg.ExportTarget() != ExportNone {
					t.Errorf("Expected no export target, got %q", cfg.ExportTarget())
				}
				if cfg.ExplanationsViaLLM() {
					t.Error("Expected template explanations without API key")
				}
			},
		},
		{
			name: "explicit values",
			envVars: map[string]string{
				"SERVER_PORT":       "9090",
				"DEFAULT_DOMAIN":    "car",
				"SESSION_TTL":       "2h",
				"REDIS_URL":         "redis://cache:6379/1",
				"RABBITMQ_PREFETCH": "25",
				"ENABLE_HSTS":       "true",
				"OPENAI_API_KEY":    "sk-test",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "9090" {
					t.Errorf("Expected ServerPort '9090', got '%s'", cfg.ServerPort)
				}
				if cfg.DefaultDomain != "car" {
					t.Errorf("Expected domain 'car', got '%s'", cfg.DefaultDomain)
				}
				if cfg.SessionTTL != 2*time.Hour {
					t.Errorf("Expected SessionTTL 2h, got %v", cfg.SessionTTL)
				}
				if cfg.RabbitPrefetch != 25 {
					t.Errorf("Expected prefetch 25, got %d", cfg.RabbitPrefetch)
				}
				if !cfg.EnableHSTS {
					t.Error("Expected EnableHSTS to be true")
				}
				if !cfg.ExplanationsViaLLM() {
					t.Error("Expected LLM explanations with API key")
				}
			},
		},
		{
			name:    "file export",
			envVars: map[string]string{"EXPORT_DIR": "/var/lib/cinemate/exports"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ExportTarget() != ExportFile {
					t.Errorf("Expected file export, got %q", cfg.ExportTarget())
				}
			},
		},
		{
			name:    "s3 export",
			envVars: map[string]string{"EXPORT_S3_BUCKET": "cinemate-exports", "AWS_REGION": "eu-central-1"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ExportTarget() != ExportS3 {
					t.Errorf("Expected s3 export, got %q", cfg.ExportTarget())
				}
				if cfg.AWSRegion != "eu-central-1" {
					t.Errorf("Expected region eu-central-1, got %s", cfg.AWSRegion)
				}
			},
		},
		{
			name:        "both export targets",
			envVars:     map[string]string{"EXPORT_DIR": "/tmp/x", "EXPORT_S3_BUCKET": "b"},
			expectError: "not both",
		},
		{
			name:        "invalid domain name",
			envVars:     map[string]string{"DEFAULT_DOMAIN": "Movie Night"},
			expectError: "DEFAULT_DOMAIN",
		},
		{
			name:        "non-positive ttl",
			envVars:     map[string]string{"SESSION_TTL": "0s"},
			expectError: "SESSION_TTL",
		},
		{
			name:        "malformed duration",
			envVars:     map[string]string{"SESSION_TTL": "forever"},
			expectError: "failed to parse environment",
		},
		{
			name:        "otel without endpoint",
			envVars:     map[string]string{"OTEL_ENABLED": "true"},
			expectError: "OTEL_EXPORTER_OTLP_ENDPOINT",
		},
		{
			name:        "zero prefetch",
			envVars:     map[string]string{"RABBITMQ_PREFETCH": "0"},
			expectError: "RABBITMQ_PREFETCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadFrom(tt.envVars)
			if tt.expectError != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, got nil", tt.expectError)
				}
				if !strings.Contains(err.Error(), tt.expectError) {
					t.Errorf("Expected error containing %q, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoad_FromProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("STATS_SCHEDULE", "@every 5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("Expected ServerPort '7070', got '%s'", cfg.ServerPort)
	}
	if cfg.StatsSchedule != "@every 5m" {
		t.Errorf("Expected StatsSchedule '@every 5m', got '%s'", cfg.StatsSchedule)
	}
}
