package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=finanzas port=5432 sslmode=disable"

type Config struct {
	HTTPPort     string
	DatabaseType string // postgres | sqlite | memory
	DatabaseDSN  string
	JWTSecret    string
	TokenTTL     time.Duration
	CORSOrigins  string
	Location     *time.Location // day boundaries for date filters
	LogMode      string         // development | production
	LogFile      string         // empty: stdout only

	envFileMissing bool
}

// Load reads the environment, after an optional .env file in the working
// directory.
func Load() (*Config, error) {
	// .env is optional; deployments set the variables directly.
	envFileErr := godotenv.Load()

	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabaseType: strings.ToLower(getEnv("DATABASE_TYPE", "postgres")),
		DatabaseDSN:  getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:19006"),
		LogMode:      getEnv("LOG_MODE", "development"),
		LogFile:      getEnv("LOG_FILE", ""),
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "720h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL is not a positive duration: %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	tz := getEnv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.envFileMissing = envFileErr != nil
	return cfg, nil
}

// UsesDefaultDSN reports a postgres store pointed at the local default DSN.
func (c *Config) UsesDefaultDSN() bool {
	return c.DatabaseType == "postgres" && c.DatabaseDSN == defaultDSN
}

// LogNotices reports what Load noticed about the environment. Load runs
// before the logger exists, so main calls this once it does.
func (c *Config) LogNotices(logger *zap.Logger) {
	if c.envFileMissing {
		logger.Debug("no .env file found, using process environment")
	}
	if c.UsesDefaultDSN() {
		logger.Warn("DATABASE_DSN is the local default, set it for production")
	}
	if c.DatabaseType == "memory" {
		logger.Warn("DATABASE_TYPE=memory: data is lost on restart")
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DatabaseType {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("DATABASE_TYPE %q is not one of postgres|sqlite|memory", c.DatabaseType)
	}
	switch c.LogMode {
	case "development", "production":
	default:
		return fmt.Errorf("LOG_MODE %q is not one of development|production", c.LogMode)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
