package server

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadConfig.
const (
	EnvAddr     = "TILEORG_ADDR"
	EnvLogLevel = "TILEORG_LOG_LEVEL"
	EnvRedisURL = "TILEORG_REDIS_URL"
	EnvScope    = "TILEORG_CACHE_SCOPE"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Config holds the server settings.
type Config struct {
	Addr     string
	LogLevel string
	RedisURL string

	// Scope separates the cache keys of deployments sharing one Redis.
	Scope string
}

// LoadConfig reads dotenv files into the environment and builds a Config
// from it. With no paths ".env" is tried; a missing file is not an error.
// Variables already set in the environment win over the files.
func LoadConfig(paths ...string) Config {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
	return Config{
		Addr:     getEnv(EnvAddr, DefaultAddr),
		LogLevel: getEnv(EnvLogLevel, "info"),
		RedisURL: os.Getenv(EnvRedisURL),
		Scope:    os.Getenv(EnvScope),
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}
