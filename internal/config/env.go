package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// FilterConfig holds page filter defaults; CLI flags override them.
type FilterConfig struct {
	DPI         int
	Threshold   int
	JPEGQuality int
	Workers     int
}

// StatusConfig controls run status records in Redis. Empty RedisURL disables them.
type StatusConfig struct {
	RedisURL string
	TTL      time.Duration
}

// StorageConfig controls remote inputs and outputs.
type StorageConfig struct {
	Bucket       string
	FetchTimeout time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Logging     LoggingConfig
	Axiom       AxiomConfig
	Filter      FilterConfig
	Status      StatusConfig
	Storage     StorageConfig
	MetricsFile string
}

// FromEnv loads configuration from .env (if present) and the environment.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", "true")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfpages",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Filter = FilterConfig{
		DPI:         parseInt(getEnv("FILTER_DPI", "300"), 300),
		Threshold:   parseInt(getEnv("FILTER_THRESHOLD", "30"), 30),
		JPEGQuality: parseInt(getEnv("FILTER_JPEG_QUALITY", "95"), 95),
		Workers:     parseInt(getEnv("FILTER_WORKERS", "1"), 1),
	}
	if cfg.Filter.Workers <= 0 {
		cfg.Filter.Workers = 1
	}

	cfg.Status = StatusConfig{
		RedisURL: getEnv("REDIS_URL", ""),
		TTL:      parseDuration(getEnv("STATUS_TTL", "24h"), 24*time.Hour),
	}

	cfg.Storage = StorageConfig{
		Bucket:       getEnv("AWS_S3_BUCKET", ""),
		FetchTimeout: parseDuration(getEnv("FETCH_TIMEOUT", "5m"), 5*time.Minute),
	}

	cfg.MetricsFile = getEnv("METRICS_FILE", "")

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
