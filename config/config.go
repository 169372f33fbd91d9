// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	// ClockBudget is the per-player time budget for new sessions.
	ClockBudget time.Duration

	// SweepInterval is how often active sessions are checked for
	// time expiry.
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "duelgrid"),
		DBPassword:    getEnv("DB_PASSWORD", "duelgrid"),
		DBName:        getEnv("DB_NAME", "duelgrid"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		ClockBudget:   time.Duration(getEnvInt("GAME_CLOCK_SECONDS", 60)) * time.Second,
		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_MS", 1000)) * time.Millisecond,
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Printf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Environment variable %s has invalid value %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
