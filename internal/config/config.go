// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret verifies HS256 bearer tokens. Required.
	JWTSecret string

	// Location is the business time zone that decides what "today" is.
	// BUSINESS_TIMEZONE takes an IANA name; defaults to UTC.
	Location *time.Location

	// RedisURL enables the cross-instance change relay when set.
	RedisURL string

	// StorageDriver selects where invoice PDFs go: "local" (default) or "s3".
	StorageDriver string
	// StorageDir and StorageBaseURL configure the local driver.
	StorageDir     string
	StorageBaseURL string
	// S3Bucket and S3Region configure the s3 driver; both are required when
	// it is selected. StorageBaseURL, when set, overrides the bucket URL.
	S3Bucket string
	S3Region string

	// ReconcileSchedule is the cron spec for status reconciliation.
	// Defaults to "@every 15m".
	ReconcileSchedule string

	// RateLimitRPS and RateLimitBurst bound requests per client.
	// A zero RPS disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// CompanyName is printed on invoices.
	CompanyName string
}

// LoadDotenv populates the environment from the given .env files (".env"
// when none are given). Variables already set win. Missing files are
// ignored so production can rely on the real environment alone.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotenv: %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first malformed value.
func Load() (Config, error) {
	port := getEnv("PORT", "8080")
	cfg := Config{
		Port:              port,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:          os.Getenv("REDIS_URL"),
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal)),
		StorageDir:        getEnv("STORAGE_DIR", "./data/files"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", ""),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          os.Getenv("S3_REGION"),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 15m"),
		CompanyName:       getEnv("COMPANY_NAME", "Travel Management"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch cfg.StorageDriver {
	case StorageLocal:
		if cfg.StorageBaseURL == "" {
			cfg.StorageBaseURL = "http://localhost:" + port + "/files"
		}
	case StorageS3:
		if cfg.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if cfg.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageLocal, StorageS3, cfg.StorageDriver)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Location, err = time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}
	if cfg.RateLimitRPS, err = parseFloat("RATE_LIMIT_RPS", 20); err != nil {
		return Config{}, err
	}
	burst, err := parseInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitBurst = int(burst)
	if cfg.MaxBodyBytes, err = parseInt("MAX_BODY_BYTES", 1<<20); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, raw)
	}
	return v, nil
}

func parseInt(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
