package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Poll     PollConfig     `yaml:"poll"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type DispatchConfig struct {
	SendTimeout   time.Duration `yaml:"send_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

type PollConfig struct {
	// DefaultInterval seeds the persisted poll_interval setting on first
	// run. The live value is read from the database at every wake.
	DefaultInterval time.Duration `yaml:"default_interval"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	CycleTimeout    time.Duration `yaml:"cycle_timeout"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// A missing config file is fine; everything has a default.
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "notifeed.db"
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.Retry.MaxAttempts == 0 {
		c.Fetch.Retry.MaxAttempts = 3
	}
	if c.Fetch.Retry.InitialBackoff == 0 {
		c.Fetch.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Fetch.Retry.MaxBackoff == 0 {
		c.Fetch.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Dispatch.SendTimeout == 0 {
		c.Dispatch.SendTimeout = 15 * time.Second
	}
	if c.Dispatch.MaxConcurrent == 0 {
		c.Dispatch.MaxConcurrent = 4
	}
	if c.Poll.DefaultInterval == 0 {
		c.Poll.DefaultInterval = 15 * time.Minute
	}
	if c.Poll.MaxConcurrent == 0 {
		c.Poll.MaxConcurrent = 8
	}
	if c.Poll.CycleTimeout == 0 {
		c.Poll.CycleTimeout = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
