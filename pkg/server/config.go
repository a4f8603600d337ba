package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the room server's environment configuration.
type Config struct {
	Addr            string `env:"ROLL_ADDR" envDefault:":8080"`
	DefaultNotation string `env:"ROLL_DEFAULT_NOTATION" envDefault:"1d20"`
}

// ConfigFromEnv loads configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
