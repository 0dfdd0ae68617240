// Package config loads the service configuration from the environment once
// at startup. The resulting Config is never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultAdminEmail    = "admin@certificados.com"
	DefaultAdminPassword = "Admin@123"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL   string
	DBMaxOpen     int
	DBMaxIdle     int
	DBMaxLifetime time.Duration

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	AdminEmail    string
	AdminPassword string

	FrontendURL string

	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only safe behind a proxy that overwrites those headers.
	TrustProxy bool

	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Lookup returns the value of an environment variable or "" when unset.
type Lookup func(key string) string

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

func LoadFrom(env Lookup) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(env(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:           get("APP_ENV", EnvDevelopment),
		Port:          get("PORT", "4000"),
		LogLevel:      get("LOG_LEVEL", "info"),
		DatabaseURL:   get("DATABASE_URL", "sqlite://certificados.db"),
		JWTSecret:     env("JWT_SECRET"),
		AdminEmail:    get("ADMIN_EMAIL", DefaultAdminEmail),
		AdminPassword: get("ADMIN_PASSWORD", DefaultAdminPassword),
		FrontendURL:   get("FRONTEND_URL", "http://localhost:5173"),
		RedisURL:      get("REDIS_URL", ""),
	}

	var err error
	if cfg.DBMaxOpen, err = atoi("DB_MAX_OPEN", get("DB_MAX_OPEN", "25")); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdle, err = atoi("DB_MAX_IDLE", get("DB_MAX_IDLE", "25")); err != nil {
		return Config{}, err
	}
	lifetime, err := atoi("DB_MAX_LIFETIME", get("DB_MAX_LIFETIME", "300"))
	if err != nil {
		return Config{}, err
	}
	cfg.DBMaxLifetime = time.Duration(lifetime) * time.Second

	if cfg.JWTTTL, err = ParseTTL(get("JWT_EXPIRES_IN", "2h")); err != nil {
		return Config{}, fmt.Errorf("%w: JWT_EXPIRES_IN: %v", ErrInvalidConfig, err)
	}
	if cfg.BcryptCost, err = atoi("BCRYPT_SALT_ROUNDS", get("BCRYPT_SALT_ROUNDS", "12")); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = atoi("LOGIN_RATE_LIMIT", get("LOGIN_RATE_LIMIT", "20")); err != nil {
		return Config{}, err
	}
	if cfg.TrustProxy, err = strconv.ParseBool(get("TRUST_PROXY", "false")); err != nil {
		return Config{}, fmt.Errorf("%w: TRUST_PROXY: %v", ErrInvalidConfig, err)
	}
	if cfg.LoginRateWindow, err = ParseTTL(get("LOGIN_RATE_WINDOW", "5m")); err != nil {
		return Config{}, fmt.Errorf("%w: LOGIN_RATE_WINDOW: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("%w: APP_ENV must be one of development, test, production", ErrInvalidConfig)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("%w: JWT_SECRET must be at least 16 characters", ErrInvalidConfig)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%w: JWT_EXPIRES_IN must be positive", ErrInvalidConfig)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: BCRYPT_SALT_ROUNDS must be between %d and %d", ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return fmt.Errorf("%w: LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// UsesDefaultAdmin reports whether the bootstrap credentials were left at
// their development defaults.
func (c Config) UsesDefaultAdmin() bool {
	return c.AdminEmail == DefaultAdminEmail || c.AdminPassword == DefaultAdminPassword
}

// ParseTTL parses durations such as "20s", "15m", "2h" and "7d". A bare
// number is read as minutes.
func ParseTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, errors.New("empty duration")
	}

	if strings.HasSuffix(ttlStr, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(ttlStr, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if strings.HasSuffix(ttlStr, "m") ||
		strings.HasSuffix(ttlStr, "h") ||
		strings.HasSuffix(ttlStr, "s") {
		return time.ParseDuration(ttlStr)
	}

	// fallback: minutes
	min, err := strconv.Atoi(ttlStr)
	if err != nil {
		return 0, err
	}
	return time.Duration(min) * time.Minute, nil
}

func atoi(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}
