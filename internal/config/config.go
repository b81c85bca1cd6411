package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Backend  BackendConfig
	Preview  PreviewConfig
	Panel    PanelConfig
	Refresh  RefreshConfig
	Locale   LocaleConfig
	Prefs    PrefsConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

type BackendConfig struct {
	BaseURL string
	PushURL string
	Timeout time.Duration
}

type PreviewConfig struct {
	BaseURL     string
	LiveURL     string
	CacheSizeMB int
	CacheTTL    time.Duration
}

type PanelConfig struct {
	ListenAddr string
}

type RefreshConfig struct {
	StatusInterval time.Duration
	LogInterval    time.Duration
}

type LocaleConfig struct {
	Default string
}

type PrefsConfig struct {
	Backend    string
	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type MetricsConfig struct {
	Enabled bool
}

type LoggingConfig struct {
	Level string
	File  string
}

const (
	PrefsBackendSQLite   = "sqlite"
	PrefsBackendRedis    = "redis"
	PrefsBackendPostgres = "postgres"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("PANEL_BACKEND_URL", "http://127.0.0.1:8080"), "/"),
			PushURL: getEnv("PANEL_PUSH_URL", "ws://127.0.0.1:8080/ws"),
			Timeout: time.Duration(getEnvInt("PANEL_BACKEND_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Preview: PreviewConfig{
			BaseURL:     strings.TrimRight(getEnv("PANEL_PREVIEW_URL", "https://api.chzzk.naver.com/service/v1"), "/"),
			LiveURL:     strings.TrimRight(getEnv("PANEL_LIVE_URL", "https://chzzk.naver.com/live"), "/"),
			CacheSizeMB: getEnvInt("PREVIEW_CACHE_MB", 4),
			CacheTTL:    time.Duration(getEnvInt("PREVIEW_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Panel: PanelConfig{
			ListenAddr: getEnv("PANEL_LISTEN_ADDR", "127.0.0.1:8090"),
		},
		Refresh: RefreshConfig{
			StatusInterval: time.Duration(getEnvInt("STATUS_REFRESH_SECONDS", 30)) * time.Second,
			LogInterval:    time.Duration(getEnvInt("LOG_REFRESH_SECONDS", 60)) * time.Second,
		},
		Locale: LocaleConfig{
			Default: getEnv("PANEL_DEFAULT_LOCALE", "en"),
		},
		Prefs: PrefsConfig{
			Backend:    strings.ToLower(getEnv("PREFS_BACKEND", PrefsBackendSQLite)),
			SQLitePath: getEnv("PREFS_SQLITE_PATH", "data/panel_prefs.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "panel"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "panel"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/panel.log"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("PANEL_BACKEND_URL is required")
	}
	if c.Backend.PushURL == "" {
		return fmt.Errorf("PANEL_PUSH_URL is required")
	}
	if c.Panel.ListenAddr == "" {
		return fmt.Errorf("PANEL_LISTEN_ADDR is required")
	}
	if c.Refresh.StatusInterval <= 0 {
		return fmt.Errorf("STATUS_REFRESH_SECONDS must be positive")
	}
	if c.Refresh.LogInterval <= 0 {
		return fmt.Errorf("LOG_REFRESH_SECONDS must be positive")
	}
	switch c.Prefs.Backend {
	case PrefsBackendSQLite:
		if c.Prefs.SQLitePath == "" {
			return fmt.Errorf("PREFS_SQLITE_PATH is required for the sqlite backend")
		}
	case PrefsBackendRedis, PrefsBackendPostgres:
	default:
		return fmt.Errorf("PREFS_BACKEND must be one of sqlite, redis, postgres (got %q)", c.Prefs.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
