package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	ListenAddr     string
	Environment    string
	MigrationsPath string
	BoardStartHour int
	BoardEndHour   int
}

func Load() (*Config, error) {
	// A missing .env file is fine; plain environment variables still work.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		BoardStartHour: envInt("BOARD_START_HOUR", 8),
		BoardEndHour:   envInt("BOARD_END_HOUR", 22),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.BoardStartHour < 0 || cfg.BoardEndHour > 24 || cfg.BoardStartHour >= cfg.BoardEndHour {
		return nil, fmt.Errorf("board hours %d..%d are out of range", cfg.BoardStartHour, cfg.BoardEndHour)
	}

	return cfg, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring non-numeric %s=%q", key, raw)
		return fallback
	}
	return v
}
