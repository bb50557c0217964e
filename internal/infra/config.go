package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	BuildID             string
	ReplicateAPIToken   string
	ReplicateBaseURL    string
	ReplicatePollEvery  time.Duration
	ReplicatePollBudget time.Duration
	MaxImageDimension   int
	MaxUploadBytes      int64
	StoragePath         string
	GeoIPDBPath         string
	CommitSHA           string
	DeployEnv           string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "3002"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		BuildID:             getEnv("BUILD_ID", defaultBuildID()),
		ReplicateAPIToken:   os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:    getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		ReplicatePollEvery:  time.Second,
		ReplicatePollBudget: time.Second * time.Duration(getEnvInt("REPLICATE_POLL_TIMEOUT_SECONDS", 120)),
		MaxImageDimension:   getEnvInt("MAX_IMAGE_DIMENSION", 2048),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 4*1024*1024)),
		StoragePath:         getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		CommitSHA:           os.Getenv("VERCEL_GIT_COMMIT_SHA"),
		DeployEnv:           os.Getenv("VERCEL_ENV"),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// REPLICATE_API_TOKEN is intentionally not validated here: the AI
	// endpoints report MISSING_ENV per request so the catalog API keeps
	// working without provider credentials.

	return cfg, nil
}

func defaultBuildID() string {
	if sha := os.Getenv("VERCEL_GIT_COMMIT_SHA"); sha != "" {
		if len(sha) > 12 {
			sha = sha[:12]
		}
		return "api-" + sha
	}
	return "api-dev"
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
