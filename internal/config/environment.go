// Package config provides configuration loading and management for the vanish service.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// Supported paste store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds environment configuration for the vanish service.
type Config struct {
	// Port is the port on which the HTTP server listens.
	Port string `env:"VANISH_PORT" envDefault:"8080"`
	// PublicBaseURL is the origin share links are built on.
	PublicBaseURL string `env:"VANISH_PUBLIC_BASE_URL" envDefault:"http://localhost:5173"`
	// Store selects the paste backend: memory, redis or postgres.
	Store string `env:"VANISH_STORE" envDefault:"memory"`
	// TestMode lets requests pin the current time via X-Test-Now-Ms.
	TestMode bool `env:"VANISH_TEST_MODE"`
	// SweepInterval is how often unreadable pastes are reclaimed. Zero disables
	// it, and it is ignored in test mode.
	SweepInterval time.Duration `env:"VANISH_SWEEP_INTERVAL" envDefault:"1m"`
	// RedisRetention keeps unreadable pastes around in Redis before they are evicted.
	RedisRetention time.Duration `env:"VANISH_REDIS_RETENTION" envDefault:"1h"`
	CORSOrigins    []string      `env:"VANISH_CORS_ORIGINS" envSeparator:","`

	PostgresURL      string `env:"POSTGRES_URL"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"127.0.0.1"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"vanish"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
}

// Conf holds the global configuration for the vanish service.
var Conf Config

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown VANISH_STORE %q", c.Store)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("VANISH_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

func loadDotEnv() {
	// Load .env files listed in DOTENV_PATHS into the environment.
	// Does not override existing environ variable
	path := os.Getenv("DOTENV_PATHS")
	if path != "" {
		err := godotenv.Load(strings.Split(path, ",")...)
		if err != nil {
			logger.Fatal(context.Background(), err.Error())
		}
	}
}

// Load parses the environment into a fresh Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	return c, c.Validate()
}

// InitConf initializes the global configuration by loading environment variables and .env files.
func InitConf() {
	loadDotEnv()

	c, err := Load()
	if err != nil {
		logger.Fatal(context.Background(), err.Error())
	}
	Conf = c
}
