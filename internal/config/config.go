package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabasePath string `env:"DATABASE_PATH" envDefault:"fire_data.db"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"fire-replay-events"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Replay engine configuration.
	DefaultSpeed   string `env:"DEFAULT_SPEED" envDefault:"slow"`
	OverflowPolicy string `env:"OVERFLOW_POLICY" envDefault:"block"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	if cfg.DatabasePath == "" {
		return nil, errors.New("DATABASE_PATH is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if _, ok := domain.SpeedTierFor(cfg.DefaultSpeed); !ok {
		return nil, fmt.Errorf("unknown DEFAULT_SPEED %q", cfg.DefaultSpeed)
	}
	switch cfg.OverflowPolicy {
	case "block", "drop_oldest", "drop_newest":
	default:
		return nil, fmt.Errorf("unknown OVERFLOW_POLICY %q", cfg.OverflowPolicy)
	}

	return cfg, nil
}
