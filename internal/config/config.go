package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Port            string
	DatabaseURL     string // empty means in-memory stores
	RedisURL        string
	JWTSecret       string
	NumWorkers      int
	DeliveryTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	dbURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	numWorkers := getEnvInt("NUM_WORKERS", 50)
	timeoutSec := getEnvInt("DELIVERY_TIMEOUT_SECONDS", 5)

	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:            port,
		DatabaseURL:     dbURL,
		RedisURL:        redisURL,
		JWTSecret:       jwtSecret,
		NumWorkers:      numWorkers,
		DeliveryTimeout: time.Duration(timeoutSec) * time.Second,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
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
	}
	return fallback
}
