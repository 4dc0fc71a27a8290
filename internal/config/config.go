// Package config holds service configuration loaded from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string // empty = default path
	UploadsDir     string
	JWTSecret      string
	GoogleClientID string
	DevMode        bool
	MaxAttachments int
	RequestTimeout time.Duration
}

// Load reads a .env file if present and returns config from the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	return Config{
		Port:           envInt("SH_PORT", 5000),
		DBPath:         os.Getenv("SH_DB_PATH"),
		UploadsDir:     envOrDefault("SH_UPLOADS_DIR", "uploads"),
		JWTSecret:      os.Getenv("SH_JWT_SECRET"),
		GoogleClientID: os.Getenv("SH_GOOGLE_CLIENT_ID"),
		DevMode:        os.Getenv("SH_DEV_MODE") == "true",
		MaxAttachments: envInt("SH_MAX_ATTACHMENTS", 5),
		RequestTimeout: envDuration("SH_REQUEST_TIMEOUT", 10*time.Second),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "value", v)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment", "key", key, "value", v)
		return fallback
	}
	return d
}
