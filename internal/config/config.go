// Package config loads application configuration from environment
// variables. Required values abort startup; values with documented
// defaults fall back silently.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration. Durations are parsed from Go
// duration strings ("15m", "168h").
type Config struct {
	Env         string        // APP_ENV: dev, test or prod
	Port        string        // PORT: HTTP listen port
	DatabaseDSN string        // DATABASE_URL: MySQL DSN
	JWTSecret   string        // JWT_SECRET: HS256 signing secret (both token kinds)
	AccessTTL   time.Duration // JWT_ACCESS_EXPIRATION, default 15m
	RefreshTTL  time.Duration // JWT_REFRESH_EXPIRATION, default 168h (7 days)

	// Argon2id cost parameters for password hashing.
	Argon2Memory      int // ARGON2_MEMORY_COST in KiB, default 65536
	Argon2Time        int // ARGON2_TIME_COST, default 3
	Argon2Parallelism int // ARGON2_PARALLELISM, default 4
}

// Load reads the configuration from the environment. Missing required
// variables or unparseable values are fatal.
func Load() Config {
	return Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        must("PORT"),
		DatabaseDSN: must("DATABASE_URL"),
		JWTSecret:   must("JWT_SECRET"),
		AccessTTL:   durDefault("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		RefreshTTL:  durDefault("JWT_REFRESH_EXPIRATION", 7*24*time.Hour),

		Argon2Memory:      intDefault("ARGON2_MEMORY_COST", 65536),
		Argon2Time:        intDefault("ARGON2_TIME_COST", 3),
		Argon2Parallelism: intDefault("ARGON2_PARALLELISM", 4),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intDefault parses an optional integer variable. A set-but-invalid value
// is fatal rather than silently falling back, matching startup validation
// for the rest of the config.
func intDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func durDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
