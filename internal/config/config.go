package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the storefront API base used when neither a runtime nor a
// build-time value is provided.
const DefaultAPIURL = "http://localhost:3000/api"

// BuildAPIURL is injected at build time:
//
//	go build -ldflags "-X github.com/GTDGit/gtd_storefront/internal/config.BuildAPIURL=https://api.example.com"
var BuildAPIURL = ""

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	APIURL    string
	CORSHosts []string

	JWT      JWTConfig
	DB       DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Checkout CheckoutConfig
	Worker   WorkerConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// JWTConfig contains token signing parameters.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DatabaseConfig contains PostgreSQL connection parameters. The ledger archive
// is disabled when Host is empty.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains object storage configuration for product images.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// CheckoutConfig contains checkout pricing and timing parameters.
type CheckoutConfig struct {
	BankFee      int64
	VoucherDelay time.Duration
	SessionTTL   time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	DashboardInterval time.Duration
	SweepInterval     time.Duration
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// MetricsConfig controls the Prometheus registry.
type MetricsConfig struct {
	Namespace string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.APIURL = ResolveAPIURL(os.Getenv("APP_CONFIG_API_URL"), BuildAPIURL, os.Getenv("VITE_API_URL"))
	cfg.CORSHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000,localhost:5173"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (AWS Jakarta region)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-3"),
		Bucket:          getEnv("S3_BUCKET", "gtd-storefront"),
		Endpoint:        getEnv("S3_ENDPOINT", "https://s3.ap-southeast-3.amazonaws.com"),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	cfg.Log = LogConfig{
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
	}

	cfg.Metrics = MetricsConfig{
		Namespace: getEnv("METRICS_NAMESPACE", "storefront"),
	}

	cfg.Checkout.BankFee = int64(getEnvInt("CHECKOUT_BANK_FEE", 2500))
	cfg.JWT.Secret = getEnv("JWT_SECRET", "")

	// Durations
	var err error
	if cfg.JWT.AccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
	}
	if cfg.JWT.RefreshTTL, err = parseDurationEnv("JWT_REFRESH_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_TTL: %w", err)
	}
	if cfg.Checkout.VoucherDelay, err = parseDurationEnv("CHECKOUT_VOUCHER_DELAY", "1500ms"); err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_VOUCHER_DELAY: %w", err)
	}
	if cfg.Checkout.SessionTTL, err = parseDurationEnv("CHECKOUT_SESSION_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_SESSION_TTL: %w", err)
	}
	if cfg.Worker.DashboardInterval, err = parseDurationEnv("DASHBOARD_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_INTERVAL: %w", err)
	}
	if cfg.Worker.SweepInterval, err = parseDurationEnv("CHECKOUT_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_SWEEP_INTERVAL: %w", err)
	}

	if cfg.DB.Enabled() && (cfg.DB.User == "" || cfg.DB.Name == "") {
		return nil, errors.New("database configuration incomplete: ensure DB_USER and DB_NAME are set with DB_HOST")
	}

	if cfg.Checkout.BankFee < 0 {
		return nil, errors.New("CHECKOUT_BANK_FEE must be >= 0")
	}

	// Validate JWT_SECRET
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// ResolveAPIURL picks the first non-empty candidate in priority order
// (runtime, build-time, build-time env) and falls back to DefaultAPIURL.
func ResolveAPIURL(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return DefaultAPIURL
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
