// Package config loads the server settings: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	APIBaseURL    string        `yaml:"api_base_url"`
	APITimeout    time.Duration `yaml:"api_timeout"`
	SessionSecret string        `yaml:"session_secret"`
	SessionMaxAge int           `yaml:"session_max_age_days"`
	HTTPS         bool          `yaml:"https"`
	DatabaseURL   string        `yaml:"database_url"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Addr:          ":3000",
		APIBaseURL:    "http://localhost:8080/api",
		APITimeout:    10 * time.Second,
		SessionMaxAge: 7,
		LogLevel:      "info",
	}
}

// SessionLifetime is how long a visitor session lives.
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionMaxAge) * 24 * time.Hour
}

// Load reads path (if not empty) over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "read config")
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(err, "parse config")
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getenv("ADDR", c.Addr)
	c.APIBaseURL = getenv("API_BASE_URL", c.APIBaseURL)
	c.SessionSecret = getenv("SESSION_SECRET", c.SessionSecret)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getenv("LOG_FILE", c.LogFile)

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "API_TIMEOUT %q", v)
		}
		c.APITimeout = d
	}
	if v := os.Getenv("SESSION_MAX_AGE_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.Errorf("SESSION_MAX_AGE_DAYS must be a positive integer, got %q", v)
		}
		c.SessionMaxAge = n
	}
	if v := os.Getenv("APP_HTTPS"); v != "" {
		c.HTTPS = v == "1" || v == "true"
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
