// Package config loads service configuration from .env files and the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources for fleet records.
const (
	SourcePostgres = "postgres"
	SourceREST     = "rest"
	SourceMock     = "mock"
)

type Config struct {
	// HTTP
	Port string
	Env  string

	// Logging
	LogLevel  string
	LogFormat string

	// Fleet records
	DataSource  string
	DatabaseURL string
	DBMaxConns  int32

	// Hosted backend REST endpoint
	BackendURL     string
	BackendAPIKey  string
	BackendTimeout time.Duration

	// Redis (optional; empty address disables the shared cache and alerts)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Pipeline tuning
	BehaviorWindowDays int
	TrendLookback      int
	FuelWindowDays     int
	TargetMPG          float64
	FetchTimeout       time.Duration
	FanOutLimit        int
	SummaryCacheTTL    time.Duration
	AlertDedupTTL      time.Duration

	// Backend call monitoring
	LogQueueSize      int
	SlowCallThreshold time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	// Missing .env is normal in containers
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("GO_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		DataSource:         strings.ToLower(getEnv("DATA_SOURCE", SourcePostgres)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		BackendTimeout:     getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		BehaviorWindowDays: getEnvInt("BEHAVIOR_WINDOW_DAYS", 30),
		TrendLookback:      getEnvInt("TREND_LOOKBACK", 10),
		FuelWindowDays:     getEnvInt("FUEL_WINDOW_DAYS", 30),
		TargetMPG:          getEnvFloat("TARGET_MPG", 8.0),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		FanOutLimit:        getEnvInt("FAN_OUT_LIMIT", 8),
		SummaryCacheTTL:    getEnvDuration("SUMMARY_CACHE_TTL", 2*time.Minute),
		AlertDedupTTL:      getEnvDuration("ALERT_DEDUP_TTL", 30*time.Minute),
		LogQueueSize:       getEnvInt("LOG_QUEUE_SIZE", 100),
		SlowCallThreshold:  getEnvDuration("SLOW_CALL_THRESHOLD", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

// getEnvDuration accepts values like "30s" or "1m"; a bare integer is read as seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
