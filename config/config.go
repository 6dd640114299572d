package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds process-level settings resolved from the environment.
type Config struct {
	DBDriver string // sqlite, mysql or postgres
	DBDSN    string
	LogLevel string
}

// Load reads .env when present and resolves the configuration from the
// environment with sensible defaults for local use.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment")
	}

	cfg := &Config{
		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "fin.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
