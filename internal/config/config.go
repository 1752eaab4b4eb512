package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DBDriver      string
	JWTSecret     string
	TokenLifetime time.Duration
	GinMode       string
	LogFile       string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present. Every required value must be
// present and well formed; the process is expected to exit otherwise.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver: getEnv("DB_DRIVER", "postgres"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	portValue, err := requireEnv("PORT")
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portValue)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a valid TCP port, got %q", portValue)
	}
	cfg.Port = port

	if cfg.DatabaseURL, err = requireEnv("DATABASE_URL"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	lifetimeValue, err := requireEnv("TOKEN_LIFETIME")
	if err != nil {
		return nil, err
	}
	lifetime, err := time.ParseDuration(lifetimeValue)
	if err != nil || lifetime <= 0 {
		return nil, fmt.Errorf("TOKEN_LIFETIME must be a positive duration (e.g. 336h), got %q", lifetimeValue)
	}
	cfg.TokenLifetime = lifetime

	switch cfg.DBDriver {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", cfg.DBDriver)
	}

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
