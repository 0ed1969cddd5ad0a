package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	RedisURL     string

	// Security core
	MaxRequestSize int64
	RateLimit      int
	RateWindow     time.Duration
	ExemptPrefixes []string

	// Admin surface
	AdminPassword string
	JWTSecret     string

	// Operations
	LogDir           string
	LogRetentionDays int
	AlertURL         string
}

// Load reads env vars and falls back to defaults so the server can boot
// with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:      getEnv("GW_ENV", "development"),
		HTTPPort:         getEnv("GW_HTTP_PORT", "8080"),
		DatabasePath:     getEnv("GW_DB_PATH", filepath.Join("data", "gatewarden.db")),
		RedisURL:         getEnv("GW_REDIS_URL", ""),
		MaxRequestSize:   getEnvInt64("GW_MAX_REQUEST_SIZE", 10*1024*1024),
		RateLimit:        getEnvInt("GW_RATE_LIMIT", 1000),
		RateWindow:       time.Duration(getEnvInt("GW_RATE_WINDOW_SECONDS", 3600)) * time.Second,
		ExemptPrefixes:   getEnvList("GW_EXEMPT_PREFIXES", "/admin,/health,/metrics"),
		AdminPassword:    getEnv("GW_ADMIN_PASSWORD", "admin123"),
		JWTSecret:        getEnv("GW_JWT_SECRET", "change-this-secret"),
		LogDir:           getEnv("GW_LOG_DIR", filepath.Join("data", "logs")),
		LogRetentionDays: getEnvInt("GW_LOG_RETENTION_DAYS", 90),
		AlertURL:         getEnv("GW_ALERT_URL", ""),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
