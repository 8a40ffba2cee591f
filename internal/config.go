package internal

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	DBMaxConns      int
	LogLevel        string
	LogDev          bool
	MigrateOnStart  bool
	ShutdownTimeout time.Duration
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Port:            getEnv("PORT", "8080"),
		DBMaxConns:      getEnvInt("DB_MAX_CONNS", 10),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDev:          getEnvBool("LOG_DEV", false),
		MigrateOnStart:  getEnvBool("MIGRATE_ON_START", true),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBMaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
