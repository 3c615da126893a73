package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	minJWTSecretLength = 16
)

type Config struct {
	Environment    string
	StorageDriver  string
	DBDSN          string
	MigrationsPath string
	TelegramToken  string

	HTTPEnabled bool
	HTTPAddr    string
	JWTSecret   string

	RedisURL string
	Location *time.Location

	BookingMaxRetries     int
	RequestedBlocks       bool
	RequestExpiryInterval time.Duration
	NotifyWorkers         int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return parse(os.Getenv)
}

// parse читает конфиг через getenv, подставляя значения по умолчанию
func parse(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Environment:    get("ENV", "development"),
		StorageDriver:  get("STORAGE_DRIVER", StoragePostgres),
		DBDSN:          getenv("DB_DSN"),
		MigrationsPath: get("MIGRATIONS_PATH", "migrations"),
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		HTTPAddr:       get("HTTP_ADDR", ":8080"),
		JWTSecret:      getenv("JWT_SECRET"),
		RedisURL:       getenv("REDIS_URL"),
	}

	var err error
	if cfg.HTTPEnabled, err = parseBool(get("HTTP_ENABLED", "true"), "HTTP_ENABLED"); err != nil {
		return nil, err
	}
	if cfg.RequestedBlocks, err = parseBool(get("REQUESTED_BLOCKS", "true"), "REQUESTED_BLOCKS"); err != nil {
		return nil, err
	}
	if cfg.BookingMaxRetries, err = parseInt(get("BOOKING_MAX_RETRIES", "3"), "BOOKING_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.NotifyWorkers, err = parseInt(get("NOTIFY_WORKERS", "2"), "NOTIFY_WORKERS", 1); err != nil {
		return nil, err
	}

	cfg.RequestExpiryInterval, err = time.ParseDuration(get("REQUEST_EXPIRY_INTERVAL", "15m"))
	if err != nil || cfg.RequestExpiryInterval <= 0 {
		return nil, fmt.Errorf("REQUEST_EXPIRY_INTERVAL must be a positive duration like 15m")
	}

	cfg.Location, err = time.LoadLocation(get("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE: %w", err)
	}

	// Проверяем обязательные поля
	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q, want %s or %s", cfg.StorageDriver, StoragePostgres, StorageMemory)
	}

	if cfg.HTTPEnabled && len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters when HTTP API is enabled", minJWTSecretLength)
	}

	if !cfg.HTTPEnabled && cfg.TelegramToken == "" {
		return nil, fmt.Errorf("nothing to serve: set TELEGRAM_TOKEN or enable HTTP API")
	}

	return cfg, nil
}

func parseBool(s, key string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", key, s)
	}
	return v, nil
}

func parseInt(s, key string, lowest int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < lowest {
		return 0, fmt.Errorf("%s must be an integer >= %d, got %q", key, lowest, s)
	}
	return v, nil
}
