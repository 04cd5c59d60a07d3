// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr     string `env:"CHATLINE_ADDR" envDefault:"127.0.0.1:3000"`
	DBFile   string `env:"CHATLINE_DB" envDefault:"chatline.db"`
	Views    string `env:"CHATLINE_VIEWS" envDefault:"./web/views"`
	LogLevel string `env:"CHATLINE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
