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

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything read from the environment
type Config struct {
	Env        string
	ServerPort string
	LogLevel   string

	DB DBConfig

	JWTSecret     string
	JWTExpiration time.Duration
	// CookieMaxAge is deliberately independent of JWTExpiration
	CookieMaxAge time.Duration

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration

	RateLimitRequests int // 0 disables rate limiting
	RateLimitWindow   time.Duration
	RedisURL          string
}

// IsProduction reports whether cookies must be sent over HTTPS only
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LoadDotEnv loads .env into the process environment. Variables already set
// win; a missing file is reported but harmless.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads .env (if any) and then the environment
func Load() (*Config, error) {
	_ = LoadDotEnv()

	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:        strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DB: *dbCfg,

		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		JWTExpiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		CookieMaxAge:  getEnvAsDuration("COOKIE_MAX_AGE", 15*time.Minute),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisURL:          os.Getenv("REDIS_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY not set in environment")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWTExpiration)
	}
	if c.CookieMaxAge <= 0 {
		return fmt.Errorf("COOKIE_MAX_AGE must be positive, got %s", c.CookieMaxAge)
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.RateLimitRequests)
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction && c.Env != "test" {
		return fmt.Errorf("APP_ENV must be one of development, production, test, got %q", c.Env)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15m", "24h") or a bare number of
// seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
