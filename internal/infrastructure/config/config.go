package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// TaskApp holds the task manager's configuration, read from the environment.
type TaskApp struct {
	Addr     string `env:"ADDR,      default=:8001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionTTL bounds how long an idle login survives.
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	// Bootstrap credentials are seeded at startup so a fresh deployment has
	// a working login.
	BootstrapUsername string `env:"BOOTSTRAP_USERNAME, default=testuser"`
	BootstrapPassword string `env:"BOOTSTRAP_PASSWORD, default=password123"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kpitools"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// LoadTaskApp reads the task manager configuration from environment
// variables using go-envconfig.
func LoadTaskApp(ctx context.Context) (*TaskApp, error) {
	var cfg TaskApp
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
