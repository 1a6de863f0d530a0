package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for both services.
type Config struct {
	Port string
	Env  string

	// Gateway
	ResponderURL     string
	ResponderTimeout time.Duration
	ChunkSize        int
	ChunkDelay       time.Duration // default/fast inter-unit delay
	SlowDelay        time.Duration // slow-mode inter-unit delay

	// History store backend selection (first set wins:
	// postgres, sqlite, redis, in-memory)
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	// Responder
	Engine string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		ResponderURL:     getEnv("RESPONDER_URL", "http://localhost:3001"),
		ResponderTimeout: time.Duration(getEnvInt("RESPONDER_TIMEOUT_MS", 10000)) * time.Millisecond,
		ChunkSize:        getEnvInt("CHUNK_SIZE", 50),
		ChunkDelay:       time.Duration(getEnvInt("CHUNK_DELAY_MS", 30)) * time.Millisecond,
		SlowDelay:        time.Duration(getEnvInt("SLOW_DELAY_MS", 100)) * time.Millisecond,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		RedisURL:         os.Getenv("REDIS_URL"),
		Engine:           getEnv("ENGINE", "echo"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
