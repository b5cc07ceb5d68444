package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "DB_PATH", "CORS_ALLOWED_ORIGINS", "INTERNAL_API_KEY",
		"LOG_LEVEL", "LOG_FORMAT", "ANALYTICS_CONFIDENCE", "ANALYTICS_OMEGA_THRESHOLD",
		"ANALYTICS_STRESS_SCENARIOS", "ANALYTICS_DIGEST_SCHEDULE", "ANALYTICS_MAX_CONCURRENCY", "ANALYTICS_STORE",
		"ANALYTICS_STRESS_CONDITIONED", "SERVER_WRITE_RPS", "SERVER_WRITE_BURST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "localhost:5001" {
		t.Errorf("Expected addr localhost:5001, got %s", cfg.Server.Addr)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Expected in-memory database by default, got %s", cfg.Database.Path)
	}
	if cfg.Analytics.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %v", cfg.Analytics.Confidence)
	}
	if cfg.Analytics.Store != StoreMemory {
		t.Errorf("Expected memory store, got %s", cfg.Analytics.Store)
	}
	if cfg.Analytics.MaxConcurrency != 8 {
		t.Errorf("Expected max concurrency 8, got %d", cfg.Analytics.MaxConcurrency)
	}
	if cfg.Analytics.DigestSchedule != "@every 1h" {
		t.Errorf("Expected hourly digest, got %q", cfg.Analytics.DigestSchedule)
	}
	if cfg.Analytics.StressByHolding {
		t.Error("Expected static stress scenarios by default")
	}
	if cfg.Server.WriteRPS != 0 || cfg.Server.WriteBurst != 20 {
		t.Errorf("Expected unlimited writes with burst 20, got %v/%d", cfg.Server.WriteRPS, cfg.Server.WriteBurst)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 default origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ANALYTICS_CONFIDENCE", "0.99")
	t.Setenv("ANALYTICS_STORE", "SQLite")
	t.Setenv("ANALYTICS_MAX_CONCURRENCY", "2")
	t.Setenv("ANALYTICS_STRESS_CONDITIONED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Expected addr 0.0.0.0:8080, got %s", cfg.Server.Addr)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Analytics.Confidence != 0.99 {
		t.Errorf("Expected confidence 0.99, got %v", cfg.Analytics.Confidence)
	}
	if cfg.Analytics.Store != StoreSQLite {
		t.Errorf("Expected sqlite store, got %s", cfg.Analytics.Store)
	}
	if cfg.Analytics.MaxConcurrency != 2 {
		t.Errorf("Expected max concurrency 2, got %d", cfg.Analytics.MaxConcurrency)
	}
	if !cfg.Analytics.StressByHolding {
		t.Error("Expected conditioned stress scenarios")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ANALYTICS_CONFIDENCE", "1.5"},
		{"ANALYTICS_CONFIDENCE", "high"},
		{"ANALYTICS_OMEGA_THRESHOLD", "abc"},
		{"ANALYTICS_MAX_CONCURRENCY", "0"},
		{"ANALYTICS_STORE", "redis"},
		{"ANALYTICS_STRESS_CONDITIONED", "maybe"},
		{"SERVER_WRITE_RPS", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
