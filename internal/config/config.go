package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the poll market backend
type Config struct {
	// Server settings
	ServerPort string

	// Admin settings
	AdminPrivateKey string // optional; enables the server-side authority signer

	// Poll lifecycle settings
	CloseInterval time.Duration // how often expired polls are swept closed
}

// Load reads configuration from the environment, after loading a .env file
// if one is present
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		AdminPrivateKey: getEnv("ADMIN_PRIVATE_KEY", ""),
		CloseInterval:   time.Duration(getEnvInt("POLL_CLOSE_INTERVAL_SECONDS", 10)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
