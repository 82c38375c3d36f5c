package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment     string
	LogLevel        string
	LogFormat       string
	Host            string
	Port            string
	ModelDir        string
	DBPath          string
	RetrainSchedule string
	AllowedOrigins  []string
	TrainTimeout    int // seconds
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "8000"),
		ModelDir:        getEnv("MODEL_DIR", "models"),
		DBPath:          getEnv("DB_PATH", "data/aquasentinel.db"),
		RetrainSchedule: getEnv("RETRAIN_SCHEDULE", ""),
		AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		TrainTimeout:    getEnvAsInt("TRAIN_TIMEOUT", 600),
	}

	// Validate required configuration
	if config.ModelDir == "" {
		return nil, fmt.Errorf("MODEL_DIR is required")
	}
	if config.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH is required")
	}

	return config, nil
}

// Addr returns the host:port pair the HTTP server binds to
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice retrieves a comma-separated environment variable or returns a default value
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
