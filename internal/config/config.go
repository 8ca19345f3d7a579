// Package config loads worker and tooling settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"faredrop/internal/storage"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseDB       string

	NATSURL         string
	CaptureSubject  string
	ResultSubject   string
	MetricsAddr     string
	ReviewDBPath    string
	SampleEveryN    int
	ShutdownTimeout int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "faredrop"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "faredrop"),
		PostgresDB:       getEnv("POSTGRES_DB", "faredrop"),

		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     getEnvInt("CLICKHOUSE_PORT", 9000),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDB:       getEnv("CLICKHOUSE_DB", "faredrop"),

		NATSURL:         getEnv("NATS_URL", "nats://localhost:4222"),
		CaptureSubject:  getEnv("CAPTURE_SUBJECT", "faredrop.capture"),
		ResultSubject:   getEnv("RESULT_SUBJECT", "faredrop.extracted"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9102"),
		ReviewDBPath:    getEnv("REVIEW_DB_PATH", "./review.db"),
		SampleEveryN:    getEnvInt("SAMPLE_EVERY_N", 0),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT_SEC", 10),
	}
}

// StorageConfig maps the loaded settings onto the storage layer's config.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		ClickHouse: storage.ClickHouseConfig{
			Host:     c.ClickHouseHost,
			Port:     c.ClickHousePort,
			Database: c.ClickHouseDB,
			User:     c.ClickHouseUser,
			Password: c.ClickHousePassword,
		},
		Postgres: storage.PostgresConfig{
			Host:     c.PostgresHost,
			Port:     c.PostgresPort,
			Database: c.PostgresDB,
			User:     c.PostgresUser,
			Password: c.PostgresPassword,
		},
	}
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
