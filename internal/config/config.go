package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"planboard/internal/filestore"
	"planboard/pkg/db/postgres"
	"planboard/pkg/db/redis"
)

type Config struct {
	HTTPAddr      string
	CheckInterval time.Duration
	Postgres      postgres.Config
	Redis         redis.Config
	Files         filestore.Config
}

// Load reads the environment into an explicit config struct. A .env file is
// optional; real environment variables win either way.
func Load() (*Config, error) {
	_ = godotenv.Load()

	planRoot, err := filepath.Abs(getenv("PLAN_FILE_FOLDER", "data/plan"))
	if err != nil {
		return nil, err
	}
	submitRoot, err := filepath.Abs(getenv("SUBMIT_FILE_FOLDER", "data/submit"))
	if err != nil {
		return nil, err
	}

	interval := 60 * time.Second
	if v := os.Getenv("EXPIRE_CHECK_INTERVAL"); v != "" {
		interval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("EXPIRE_CHECK_INTERVAL: %w", err)
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB: %w", err)
		}
	}

	return &Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		CheckInterval: interval,
		Postgres: postgres.Config{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME", "planboard"),
			SSLMode:  getenv("SSL_MODE", "disable"),
		},
		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Files: filestore.Config{
			PlanRoot:   planRoot,
			SubmitRoot: submitRoot,
		},
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
