package config

import (
	"fmt"
	"strings"

	libconfig "queuesense/libs/config"
)

// Config defines model service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"MODEL_HTTP_PORT"`
	} `yaml:"http"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: struct {
			Port string `yaml:"port" env:"MODEL_HTTP_PORT"`
		}{
			Port: "5001",
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "5001"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
