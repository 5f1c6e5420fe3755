// Package config loads the chat client configuration from an optional YAML
// file with environment overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Live    LiveConfig    `yaml:"live"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig points at the REST surface.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// LiveConfig points at the WebSocket connect endpoint.
type LiveConfig struct {
	ConnectURL string `yaml:"connect_url"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: "http://localhost:8001"},
		Live:    LiveConfig{ConnectURL: "ws://localhost:8001/connect"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path when it exists, then applies env
// overrides. An empty path or a missing file means defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CHAT_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("CHAT_CONNECT_URL"); v != "" {
		c.Live.ConnectURL = v
	}
	if v := os.Getenv("CHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return chaterr.Validation("api base url is empty")
	}
	if c.Live.ConnectURL == "" {
		return chaterr.Validation("live connect url is empty")
	}
	if c.API.Token == "" {
		return chaterr.Validation("bearer token is empty (set CHAT_TOKEN)")
	}
	return nil
}
