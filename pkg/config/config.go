// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and read-only afterwards.
type Config struct {
	Server        ServerConfig
	Search        SearchConfig
	Gemini        GeminiConfig
	Nominatim     NominatimConfig
	Overpass      OverpassConfig
	SearchLogPath string
	LogLevel      slog.Level
}

type ServerConfig struct {
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MetricsEnabled     bool
}

type SearchConfig struct {
	RadiusM    int
	MaxResults int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type NominatimConfig struct {
	Endpoint    string
	CountryCode string
	Limit       int
	Timeout     time.Duration
}

type OverpassConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("SERVER_PORT", 8080),
			RateLimitPerSecond: envInt("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     envInt("RATE_LIMIT_BURST", 20),
			MetricsEnabled:     envBool("METRICS_ENABLED", true),
		},
		Search: SearchConfig{
			RadiusM:    envInt("SEARCH_RADIUS_M", 1000),
			MaxResults: envInt("SEARCH_MAX_RESULTS", 3),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Nominatim: NominatimConfig{
			Endpoint:    os.Getenv("NOMINATIM_ENDPOINT"),
			CountryCode: envStr("NOMINATIM_COUNTRY", "jp"),
			Limit:       envInt("NOMINATIM_LIMIT", 5),
			Timeout:     envDuration("NOMINATIM_TIMEOUT", 10*time.Second),
		},
		Overpass: OverpassConfig{
			Endpoint: os.Getenv("OVERPASS_ENDPOINT"),
			Timeout:  envDuration("OVERPASS_TIMEOUT", 30*time.Second),
		},
		SearchLogPath: os.Getenv("SEARCH_LOG_PATH"),
		LogLevel:      parseLogLevel(envStr("LOG_LEVEL", "info")),
	}

	if cfg.Search.RadiusM <= 0 {
		return nil, fmt.Errorf("SEARCH_RADIUS_M must be positive, got %d", cfg.Search.RadiusM)
	}
	if cfg.Search.MaxResults <= 0 {
		return nil, fmt.Errorf("SEARCH_MAX_RESULTS must be positive, got %d", cfg.Search.MaxResults)
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
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
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
