package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Log       LogConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port       string
	Host       string
	Addr       string  // Combined host:port for convenience
	WriteRPS   float64 // Shared rate limit for analytics writes; 0 disables
	WriteBurst int
}

// DatabaseConfig holds database-specific configuration.
// The default path ":memory:" keeps all results in process memory.
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the shared secret for internal callers.
// An empty key disables authentication on write routes.
type AuthConfig struct {
	InternalAPIKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // logrus level name
	Format string // "json" or "text"
}

// AnalyticsConfig holds calculation defaults and coordinator settings
type AnalyticsConfig struct {
	Confidence      float64 // VaR confidence used when a request omits it
	OmegaThreshold  float64
	StressScenarios string // Optional YAML scenario file
	StressByHolding bool   // Scale scenario losses by holding concentration
	DigestSchedule  string // cron expression; empty disables the digest
	MaxConcurrency  int    // Parallel agents in a batch run
	Store           string // "memory" or "sqlite"
}

// Store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	confidence, err := getEnvFloat("ANALYTICS_CONFIDENCE", 0.95)
	if err != nil {
		return nil, err
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("ANALYTICS_CONFIDENCE must be between 0 and 1, got %v", confidence)
	}

	omegaThreshold, err := getEnvFloat("ANALYTICS_OMEGA_THRESHOLD", 0)
	if err != nil {
		return nil, err
	}

	maxConcurrency, err := getEnvInt("ANALYTICS_MAX_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	if maxConcurrency < 1 {
		return nil, fmt.Errorf("ANALYTICS_MAX_CONCURRENCY must be at least 1, got %d", maxConcurrency)
	}

	stressByHolding, err := getEnvBool("ANALYTICS_STRESS_CONDITIONED", false)
	if err != nil {
		return nil, err
	}

	writeRPS, err := getEnvFloat("SERVER_WRITE_RPS", 0)
	if err != nil {
		return nil, err
	}
	writeBurst, err := getEnvInt("SERVER_WRITE_BURST", 20)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnv("ANALYTICS_STORE", StoreMemory))
	if store != StoreMemory && store != StoreSQLite {
		return nil, fmt.Errorf("ANALYTICS_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, store)
	}

	config := &Config{
		Server: ServerConfig{
			Port:       getEnv("SERVER_PORT", "5001"),
			Host:       getEnv("SERVER_HOST", "localhost"),
			WriteRPS:   writeRPS,
			WriteBurst: writeBurst,
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", ":memory:"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Auth: AuthConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Analytics: AnalyticsConfig{
			Confidence:      confidence,
			OmegaThreshold:  omegaThreshold,
			StressScenarios: os.Getenv("ANALYTICS_STRESS_SCENARIOS"),
			StressByHolding: stressByHolding,
			DigestSchedule:  getEnv("ANALYTICS_DIGEST_SCHEDULE", "@every 1h"),
			MaxConcurrency:  maxConcurrency,
			Store:           store,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
