// Package config loads the moderation service settings from the
// environment, with an optional .env file in the working directory.
package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	NATSURL   string
	RedisAddr string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	RunMigrations    bool

	// LexiconPath is optional; empty means the built-in word lists.
	LexiconPath string

	RiskWindow   time.Duration
	RiskTimeout  time.Duration
	RiskCacheTTL time.Duration

	ModerateRateLimit  int
	ModerateRateWindow time.Duration
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, falling back to system env vars")
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		NATSURL:   getEnv("NATS_URL", "nats://localhost:4222"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "kindshare"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "kindshare"),
		PostgresDB:       getEnv("POSTGRES_DB", "kindshare"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		RunMigrations:    getEnvBool("RUN_MIGRATIONS", true),

		LexiconPath: getEnv("LEXICON_PATH", ""),

		RiskWindow:   getEnvDuration("RISK_WINDOW", 30*24*time.Hour),
		RiskTimeout:  getEnvDuration("RISK_TIMEOUT", 2*time.Second),
		RiskCacheTTL: getEnvDuration("RISK_CACHE_TTL", 5*time.Minute),

		ModerateRateLimit:  getEnvInt("MODERATE_RATE_LIMIT", 20),
		ModerateRateWindow: getEnvDuration("MODERATE_RATE_WINDOW", time.Minute),
	}
}

// DSN returns the PostgreSQL connection URL. Credentials and the database
// name are escaped, so they may contain spaces, quotes or '@'.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": {c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
		log.Printf("[config] invalid %s=%q, using %t", key, val, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil && d > 0 {
			return d
		}
		log.Printf("[config] invalid %s=%q, using %s", key, val, fallback)
	}
	return fallback
}
