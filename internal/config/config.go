package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI  string
	LogLevel     string
	WindowMonths int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional
	}

	months := 6
	if v := os.Getenv("WINDOW_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			months = n
		}
	}

	return &Config{
		DatabaseURI:  os.Getenv("DATABASE_URI"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		WindowMonths: months,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
