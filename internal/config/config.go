// Package config loads the YAML server configuration. Every setting has a
// working default, so running without a config file is fine.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "CUBEWORLD_CONFIG"
	envPort       = "CUBEWORLD_PORT"
	defaultPort   = 8080
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type ClientConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Addr resolves the listen address with config, then environment, then the
// documented default port.
func (s ServerConfig) Addr() string {
	port := s.Port
	if port <= 0 {
		if raw := os.Getenv(envPort); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				port = parsed
			}
		}
	}
	if port <= 0 {
		port = defaultPort
	}
	return fmt.Sprintf(":%d", port)
}

// Load reads the YAML file at path. An empty path falls back to the
// CUBEWORLD_CONFIG environment variable; when neither is set, defaults
// apply and Load returns an empty config.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(envConfigPath)
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
