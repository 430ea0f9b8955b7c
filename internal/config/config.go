package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Sources struct {
		AlphaVantage struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"alphavantage"`
		FMP struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"fmp"`
		Yahoo struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"yahoo"`
	} `yaml:"sources"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Game struct {
		AllowFallback bool `yaml:"allow_fallback"`
	} `yaml:"game"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Fallback is on unless the file says allow_fallback: false.
	cfg.Game.AllowFallback = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Sources.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.Sources.FMP.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults. A missing SQLite path switches the store to memory-only.
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Sources.AlphaVantage.APIKey == "" {
		cfg.Sources.AlphaVantage.APIKey = "demo"
	}
	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Sources.AlphaVantage.APIKey == "" {
		return fmt.Errorf("sources.alphavantage.api_key is required")
	}
	return nil
}
