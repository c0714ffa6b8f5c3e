package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	JobStoreMemory   = "memory"
	JobStorePostgres = "postgres"

	GeneratorPlaceholder = "placeholder"
	GeneratorSVG         = "svg"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	LogLevel           string
	Port               string
	DatabaseURL        string
	JobStore           string
	StoragePath        string
	StorageBaseURL     string
	Generator          string
	WorkerCount        int
	WorkerMinDelay     time.Duration
	WorkerMaxDelay     time.Duration
	WorkerSuccessRate  float64
	WorkerPollInterval time.Duration
	GeoIPDBPath        string
	DefaultLocale      string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           strings.ToLower(os.Getenv("LOG_LEVEL")),
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JobStore:           strings.ToLower(os.Getenv("JOB_STORE")),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		Generator:          strings.ToLower(getEnv("GENERATOR", GeneratorPlaceholder)),
		WorkerCount:        getEnvInt("WORKER_COUNT", 2),
		WorkerMinDelay:     getEnvDuration("WORKER_MIN_DELAY", 30*time.Second),
		WorkerMaxDelay:     getEnvDuration("WORKER_MAX_DELAY", 60*time.Second),
		WorkerSuccessRate:  getEnvFloat("WORKER_SUCCESS_RATE", 0.9),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.JobStore == "" {
		cfg.JobStore = JobStoreMemory
		if cfg.DatabaseURL != "" {
			cfg.JobStore = JobStorePostgres
		}
	}
	switch cfg.JobStore {
	case JobStoreMemory:
	case JobStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when JOB_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported JOB_STORE %q", cfg.JobStore)
	}

	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	switch cfg.Generator {
	case GeneratorPlaceholder, GeneratorSVG:
	default:
		return nil, fmt.Errorf("unsupported GENERATOR %q", cfg.Generator)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WORKER_COUNT must not be negative")
	}
	if cfg.WorkerMinDelay < 0 || cfg.WorkerMaxDelay < cfg.WorkerMinDelay {
		return nil, fmt.Errorf("WORKER_MAX_DELAY must be >= WORKER_MIN_DELAY >= 0")
	}
	if cfg.WorkerSuccessRate < 0 || cfg.WorkerSuccessRate > 1 {
		return nil, fmt.Errorf("WORKER_SUCCESS_RATE must be within [0, 1]")
	}
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("STORAGE_BASE_URL: %w", err)
	}
	cfg.StorageBaseURL = strings.TrimRight(cfg.StorageBaseURL, "/")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("45s") or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
