package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string   `env:"PORT" envDefault:"8080"`
	Env            string   `env:"ENV" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8081,http://localhost:19006"`
	TrustProxy     bool     `env:"TRUST_PROXY" envDefault:"false"`

	// Logging
	LogFormat string `env:"LOG_FORMAT"`
	LogLevel  string `env:"LOG_LEVEL"`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Redis configuration
	RedisURL      string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// JWT configuration
	JWTSecret string `env:"JWT_SECRET"`

	// Wallet password settings
	PasswordAttemptsPerMinute float64 `env:"PASSWORD_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	PasswordAttemptBurst      int     `env:"PASSWORD_ATTEMPT_BURST" envDefault:"5"`
	BcryptCost                int     `env:"BCRYPT_COST" envDefault:"10"`

	// Wallet record cache; zero disables it. Records carry password hashes,
	// so they live in their own Redis DB.
	WalletCacheTTL     time.Duration `env:"WALLET_CACHE_TTL" envDefault:"5m"`
	WalletCacheRedisDB int           `env:"WALLET_CACHE_REDIS_DB" envDefault:"1"`
}

// Load loads configuration from environment variables.
// Optional .env files are read first; variables already set take precedence.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFiles loads the given files, or ./.env when none are given.
// A missing default file is not an error.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.PasswordAttemptsPerMinute <= 0 || c.PasswordAttemptBurst <= 0 {
		return fmt.Errorf("PASSWORD_ATTEMPTS_PER_MINUTE and PASSWORD_ATTEMPT_BURST must be positive")
	}

	if c.WalletCacheTTL > 0 && c.WalletCacheRedisDB == 0 {
		return fmt.Errorf("WALLET_CACHE_REDIS_DB must not share DB 0 with the selection store")
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Cheap hashes are only acceptable outside production
	if c.IsProduction() && c.BcryptCost < bcrypt.DefaultCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d in production", bcrypt.DefaultCost)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
