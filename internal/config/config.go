package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	GitHub GitHubConfig
	Quota  QuotaConfig

	RedisAddr     string
	RedisPassword string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// GitHubConfig identifies the account that published portfolios are
// created under.
type GitHubConfig struct {
	Token     string
	Owner     string
	OwnerType string // "user" or "org"
}

// QuotaConfig carries the per-fingerprint publish limits.
type QuotaConfig struct {
	TrialPeriod    time.Duration
	DailyInterval  time.Duration
	MonthlyLimit   int
	MaxLivePerUser int
}

const (
	OwnerTypeUser = "user"
	OwnerTypeOrg  = "org"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "foliopress"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		GitHub: GitHubConfig{
			Token:     strings.TrimSpace(getenv("GITHUB_TOKEN", "")),
			Owner:     strings.TrimSpace(getenv("GITHUB_OWNER", "")),
			OwnerType: normalizeOwnerType(getenv("GITHUB_OWNER_TYPE", OwnerTypeUser)),
		},
		Quota: QuotaConfig{
			TrialPeriod:    getenvDuration("QUOTA_TRIAL_PERIOD", 21*24*time.Hour),
			DailyInterval:  getenvDuration("QUOTA_DAILY_INTERVAL", 24*time.Hour),
			MonthlyLimit:   getenvInt("QUOTA_MONTHLY_LIMIT", 2),
			MaxLivePerUser: getenvInt("QUOTA_MAX_LIVE", 2),
		},
		RedisAddr:         getenv("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "foliopress"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
	}

	return cfg
}

func normalizeOwnerType(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case OwnerTypeOrg, "organization":
		return OwnerTypeOrg
	default:
		return OwnerTypeUser
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
