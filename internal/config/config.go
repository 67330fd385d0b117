package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	DatabasePath string
	CatalogPath  string // empty uses the built-in catalog
	MLModelPath  string // empty disables model fusion

	// Weather providers, tried in order: Open-Meteo, OpenWeatherMap, WeatherAPI.
	WeatherAPIURL     string
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	HTTPTimeout       time.Duration

	// Weather cache: snapshots younger than CacheMaxAge are served without
	// refetching; the store keeps CacheMaxHistory snapshots per district
	// for at most HistoryMaxAge.
	CacheMaxAge     time.Duration
	CacheMaxHistory int
	HistoryMaxAge   time.Duration

	GeminiAPIKey string
	GeminiModel  string

	// Scheduled scans.
	ScanInterval   time.Duration
	ScanWorkers    int
	ReportLookback time.Duration

	// Optional alert fan-out.
	KafkaBrokers     []string
	KafkaAlertTopic  string
	TelegramBotToken string
	TelegramChatID   int64

	LogLevel string
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is merged in first when present.
func Load() (*AppConfig, error) {
	envErr := godotenv.Load()

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		DatabasePath:      getenvDefault("DATABASE_PATH", "./data/pest-advisory.db"),
		CatalogPath:       os.Getenv("CATALOG_PATH"),
		MLModelPath:       os.Getenv("ML_MODEL_PATH"),
		WeatherAPIURL:     getenvDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		CacheMaxHistory:   getenvInt("WEATHER_CACHE_MAX_HISTORY", 24),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenvDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		ScanWorkers:       getenvInt("SCAN_WORKERS", 4),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic:   getenvDefault("KAFKA_ALERT_TOPIC", "pest-alerts"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"WEATHER_CACHE_MAX_AGE", "1h", &cfg.CacheMaxAge},
		{"WEATHER_HISTORY_MAX_AGE", "24h", &cfg.HistoryMaxAge},
		{"SCAN_INTERVAL", "6h", &cfg.ScanInterval},
		{"REPORT_LOOKBACK", "336h", &cfg.ReportLookback},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	if envErr != nil && !os.IsNotExist(envErr) {
		return cfg, fmt.Errorf("load .env: %w", envErr)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
