package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB     DatabaseConfig
	Redis  RedisConfig
	Gold   GoldFeedConfig
	Remote RemoteConfig

	// PlatingFactor is the default plating cost multiplier used until a
	// persisted or user-edited value takes over.
	PlatingFactor float64
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GoldFeedConfig contains the commodity price feed endpoint and cadence.
type GoldFeedConfig struct {
	BaseURL         string
	Pair            string
	RefreshInterval time.Duration
	Timeout         time.Duration
}

// RemoteConfig contains default remote file store settings. They seed the
// descriptor on first boot; afterwards the persisted, user-edited values win.
type RemoteConfig struct {
	Owner string
	Repo  string
	Path  string
	Token string
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
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = databaseFromEnv()

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Gold price feed
	cfg.Gold = GoldFeedConfig{
		BaseURL: getEnv("GOLD_API_URL", "https://economia.awesomeapi.com.br"),
		Pair:    getEnv("GOLD_PAIR", "XAU-BRL"),
	}

	// Remote file store defaults
	cfg.Remote = RemoteConfig{
		Owner: getEnv("REMOTE_OWNER", ""),
		Repo:  getEnv("REMOTE_REPO", ""),
		Path:  getEnv("REMOTE_PATH", "precifica_db.json"),
		Token: getEnv("REMOTE_TOKEN", ""),
	}

	cfg.PlatingFactor = getEnvFloat("PLATING_FACTOR", 0.02)

	// Durations
	var err error
	if cfg.Gold.RefreshInterval, err = parseDurationEnv("GOLD_REFRESH_INTERVAL", "60s"); err != nil {
		return nil, fmt.Errorf("invalid GOLD_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Gold.Timeout, err = parseDurationEnv("GOLD_API_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid GOLD_API_TIMEOUT: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if err := validateDatabase(&cfg.DB); err != nil {
		return nil, err
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// LoadDatabase reads only the database configuration, for auxiliary
// commands that touch the database but none of the API surface.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	db := databaseFromEnv()
	if err := validateDatabase(&db); err != nil {
		return nil, err
	}
	return &db, nil
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func validateDatabase(db *DatabaseConfig) error {
	if db.Host == "" || db.User == "" || db.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
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
