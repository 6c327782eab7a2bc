package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var Empty = new(Config)

type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"local"`
	Port            int           `envconfig:"PORT" default:"8000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	SentryDSN       string        `envconfig:"SENTRY_DSN"`
	AllowOrigins    string        `envconfig:"ALLOW_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DB struct {
		Driver       string `envconfig:"DB_DRIVER" default:"sqlite"`
		Name         string `envconfig:"DB_NAME" default:"./data/movies.db"`
		Host         string `envconfig:"DB_HOST"`
		Port         int    `envconfig:"DB_PORT"`
		User         string `envconfig:"DB_USER"`
		Pass         string `envconfig:"DB_PASS"`
		EnableSSL    bool   `envconfig:"ENABLE_SSL"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		LogQueries   bool   `envconfig:"DB_LOG_QUERIES"`
	}
	Rating struct {
		MaxRetries int `envconfig:"RATING_MAX_RETRIES" default:"5"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

// Origins splits ALLOW_ORIGINS into a list, dropping empty entries.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// SlogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
