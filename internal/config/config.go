package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type JobConfig struct {
	IntervalSeconds     int `yaml:"interval_seconds"`
	StartupDelaySeconds int `yaml:"startup_delay_seconds"`
}

type Config struct {
	Listen       string    `yaml:"listen"`
	DatabasePath string    `yaml:"database_path"`
	RedisURL     string    `yaml:"redis_url"`
	LogLevel     string    `yaml:"log_level"`
	JobConfig    JobConfig `yaml:"job"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":8989"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "grabarr.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.JobConfig.IntervalSeconds <= 0 {
		c.JobConfig.IntervalSeconds = 60
	}
	if c.JobConfig.StartupDelaySeconds <= 0 {
		c.JobConfig.StartupDelaySeconds = 60
	}
}

// Load reads the yaml config file and applies environment overrides on top.
// A missing file is not an error, the defaults and environment carry it.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if v := os.Getenv("GRABARR_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("GRABARR_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("GRABARR_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("GRABARR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GRABARR_IMPORT_CHECK_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GRABARR_IMPORT_CHECK_SECONDS %q: %w", v, err)
		}
		cfg.JobConfig.IntervalSeconds = n
	}

	cfg.SetDefaults()

	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}
