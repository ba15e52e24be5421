// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	InflationURL string
	LaborCostURL string

	// RunSchedule is the cron expression for the automatic monthly
	// extension. Empty disables the scheduler.
	RunSchedule string
}

// New loads configuration from environment variables.
func New() *Config {
	_ = godotenv.Load() // optionally load environment file

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "./data/inmo.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		InflationURL: getEnv("INFLATION_URL", ""),
		LaborCostURL: getEnv("LABOR_URL", ""),
		RunSchedule:  getEnv("RUN_SCHEDULE", "0 6 1 * *"),
	}
}

// Logger builds the application logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
