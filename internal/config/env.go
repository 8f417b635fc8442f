package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is process configuration shared by the commands.
type Env struct {
	DataDir       string        `env:"DIAMOND_DATA_DIR" envDefault:"data"`
	HTTPAddr      string        `env:"DIAMOND_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"DIAMOND_GRPC_ADDR" envDefault:":9090"`
	DBDriver      string        `env:"DIAMOND_DB_DRIVER" envDefault:"sqlite"`
	DBDSN         string        `env:"DIAMOND_DB_DSN" envDefault:"diamond.db"`
	RedisURL      string        `env:"DIAMOND_REDIS_URL"`
	ResultTTL     time.Duration `env:"DIAMOND_RESULT_TTL" envDefault:"6h"`
	WatchInterval time.Duration `env:"DIAMOND_WATCH_INTERVAL" envDefault:"2s"`
	StepDelay     time.Duration `env:"DIAMOND_STEP_DELAY" envDefault:"250ms"`
	LogLevel      string        `env:"DIAMOND_LOG_LEVEL" envDefault:"info"`
	OTelEndpoint  string        `env:"DIAMOND_OTEL_ENDPOINT"`
	Workers       int           `env:"DIAMOND_WORKERS" envDefault:"4"`
	CORSOrigins   []string      `env:"DIAMOND_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env and rejects values the commands cannot run with.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	if e.Workers < 1 {
		return Env{}, fmt.Errorf("DIAMOND_WORKERS must be >= 1, got %d", e.Workers)
	}
	switch e.DBDriver {
	case "sqlite", "postgres":
	default:
		return Env{}, fmt.Errorf("DIAMOND_DB_DRIVER must be sqlite or postgres, got %q", e.DBDriver)
	}
	return e, nil
}
