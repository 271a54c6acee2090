// Package config loads the process configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTimeoutSeconds = 30
	defaultMaxMessageLen  = 4000
	defaultPort           = "5000"
)

// Config holds everything read at process start. Credentials for AI services
// are optional individually; a missing key simply omits that service.
type Config struct {
	TelegramToken  string
	GeminiAPIKey   string
	TogetherAPIKey string

	// Model overrides; empty means the client default.
	GeminiModel   string
	TogetherModel string

	RequestTimeout   time.Duration
	MaxMessageLength int
	ListenAddr       string
	LogLevel         string
}

// Load reads the configuration, loading a .env file first if one exists.
// It fails when the Telegram token is missing or when no AI service
// credential is configured at all.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		TogetherAPIKey:   strings.TrimSpace(os.Getenv("TOGETHER_API_KEY")),
		GeminiModel:      strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		TogetherModel:    strings.TrimSpace(os.Getenv("TOGETHER_MODEL")),
		RequestTimeout:   time.Duration(envInt("REQUEST_TIMEOUT", defaultTimeoutSeconds)) * time.Second,
		MaxMessageLength: envInt("MAX_MESSAGE_LENGTH", defaultMaxMessageLen),
		ListenAddr:       listenAddr(),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.TelegramToken == "" {
		return Config{}, errors.New("config: TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.GeminiAPIKey == "" && cfg.TogetherAPIKey == "" {
		return Config{}, errors.New("config: at least one AI service API key must be configured")
	}
	return cfg, nil
}

// SlogLevel maps the configured log level onto a slog level. Unknown values
// fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func listenAddr() string {
	// Railway, Render, etc. set PORT
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":" + defaultPort
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
