package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// TokenTTL bounds the lifetime of issued session tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=24h"`

	// NotificationPollInterval is the cadence of the per-user feed poll.
	NotificationPollInterval time.Duration `env:"NOTIFICATION_POLL_INTERVAL, default=60s"`

	// ConfigHeartbeatInterval is the cadence of the configuration
	// re-broadcast tick.
	ConfigHeartbeatInterval time.Duration `env:"CONFIG_HEARTBEAT_INTERVAL, default=30s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=universe_os"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
