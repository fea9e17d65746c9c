// Package config provides configuration management for a scrape run.
// Values come from an optional YAML file and are then overridden by CLI
// flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoSitemaps        = errors.New("at least one sitemap URL is required")
	ErrInvalidLimit      = errors.New("limit must be at least 1")
	ErrInvalidTimeout    = errors.New("timeout_sec must be at least 1")
	ErrInvalidRetries    = errors.New("retries must be at least 1")
	ErrInvalidSleepRange = errors.New("sleep_min must be non-negative and not exceed sleep_max")
	ErrInvalidLogLevel   = errors.New("log_level must be one of: debug, info, warn, error")
	ErrNoOutputs         = errors.New("at least one output (jsonl, json, markdown, pdf, mongo) is required")
)

// Config represents a complete scrape configuration.
type Config struct {
	Sitemaps    []string     `yaml:"sitemaps"`
	Limit       int          `yaml:"limit"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	SleepMin    float64      `yaml:"sleep_min"`
	SleepMax    float64      `yaml:"sleep_max"`
	Retries     int          `yaml:"retries"`
	Concurrency int          `yaml:"concurrency"`
	RateLimit   float64      `yaml:"rate_limit"`
	LogLevel    string       `yaml:"log_level"`
	Output      OutputConfig `yaml:"output"`
	Mongo       MongoConfig  `yaml:"mongo"`
}

// OutputConfig lists the files written after a run. Empty paths are skipped.
type OutputConfig struct {
	JSONL    string `yaml:"jsonl"`
	JSON     string `yaml:"json"`
	Markdown string `yaml:"markdown"`
	PDF      string `yaml:"pdf"`
}

// MongoConfig enables the optional MongoDB sink when URI is set.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Limit:       10,
		TimeoutSec:  30,
		SleepMin:    1.0,
		SleepMax:    2.0,
		Retries:     3,
		Concurrency: 1,
		LogLevel:    "info",
		Output: OutputConfig{
			JSONL: "sap_pages.jsonl",
			JSON:  "sap_pages.json",
		},
		Mongo: MongoConfig{
			Database:   "threadpipe",
			Collection: "pages",
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Sitemaps) == 0 {
		return ErrNoSitemaps
	}
	if c.Limit < 1 {
		return ErrInvalidLimit
	}
	if c.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Retries < 1 {
		return ErrInvalidRetries
	}
	if c.SleepMin < 0 || c.SleepMin > c.SleepMax {
		return ErrInvalidSleepRange
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	o := c.Output
	if o.JSONL == "" && o.JSON == "" && o.Markdown == "" && o.PDF == "" && c.Mongo.URI == "" {
		return ErrNoOutputs
	}
	return nil
}

// Timeout returns the HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SleepRange returns the polite delay bounds between requests.
func (c *Config) SleepRange() (time.Duration, time.Duration) {
	return seconds(c.SleepMin), seconds(c.SleepMax)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
