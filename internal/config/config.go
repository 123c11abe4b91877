package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	PubSub   PubSubConfig
	Trigger  TriggerConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PubSubConfig struct {
	NatsURL         string
	GCloudProjectID string
}

// TriggerConfig tunes snooze and cooldown behavior of the engine.
type TriggerConfig struct {
	DefaultSnooze      time.Duration
	ReentryDebounce    time.Duration
	UntilLeaveCooldown time.Duration
	MaxRegions         int
}

func Load() (*Config, error) {
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("SERVER_READ_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("SERVER_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	defaultSnooze, err := time.ParseDuration(getEnv("TRIGGER_DEFAULT_SNOOZE", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_DEFAULT_SNOOZE: %w", err)
	}

	reentryDebounce, err := time.ParseDuration(getEnv("TRIGGER_REENTRY_DEBOUNCE", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_REENTRY_DEBOUNCE: %w", err)
	}

	untilLeaveCooldown, err := time.ParseDuration(getEnv("TRIGGER_UNTIL_LEAVE_COOLDOWN", "4h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_UNTIL_LEAVE_COOLDOWN: %w", err)
	}

	maxRegions, err := strconv.Atoi(getEnv("TRIGGER_MAX_REGIONS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_MAX_REGIONS: %w", err)
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("POSTGRES_DSN environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         serverPort,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			DSN:             dsn,
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		PubSub: PubSubConfig{
			NatsURL:         getEnv("NATS_URL", ""),
			GCloudProjectID: getEnv("GCLOUD_PROJECT_ID", ""),
		},
		Trigger: TriggerConfig{
			DefaultSnooze:      defaultSnooze,
			ReentryDebounce:    reentryDebounce,
			UntilLeaveCooldown: untilLeaveCooldown,
			MaxRegions:         maxRegions,
		},
	}

	if err := cfg.PubSub.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
