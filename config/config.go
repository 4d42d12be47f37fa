package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"hut-occupancy-backend/internal/hut"
)

// Config represents the overall application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Poller  PollerConfig  `yaml:"poller"`
	Dataset DatasetConfig `yaml:"dataset"`
	Weather WeatherConfig `yaml:"weather"`
	Huts    []HutConfig   `yaml:"huts" validate:"dive"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" validate:"min=1,max=65535"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" validate:"gt=0"`
	RateLimitBurst  int     `yaml:"rate_limit_burst" validate:"min=1"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds" validate:"min=0"`
}

// PollerConfig holds the availability poller configuration.
type PollerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds" validate:"min=1"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	URL             string        `yaml:"url" validate:"required,url"`
	UserAgent       string        `yaml:"user_agent" validate:"required"`
	TimeoutSeconds  int           `yaml:"timeout_seconds" validate:"min=1"`
	Timeout         time.Duration `yaml:"-"` // Ignored by YAML parser
	HTTPProxy       string        `yaml:"http_proxy"`
}

// DatasetConfig locates the CSV history dataset. Timezone decides which
// calendar date a polling pass stamps as its retrieval date.
type DatasetConfig struct {
	Path     string `yaml:"path" validate:"required"`
	Timezone string `yaml:"timezone" validate:"required,timezone"`
}

// WeatherConfig holds the Open-Meteo forecast client configuration.
type WeatherConfig struct {
	BaseURL         string `yaml:"base_url" validate:"required,url"`
	Timezone        string `yaml:"timezone" validate:"required"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" validate:"min=1"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" validate:"min=1"`
}

// HutConfig describes one tracked hut. When the huts list is empty the
// built-in registry is used instead.
type HutConfig struct {
	Name          string  `yaml:"name" validate:"required"`
	HutID         int64   `yaml:"hut_id" validate:"min=1"`
	Latitude      float64 `yaml:"latitude" validate:"min=-90,max=90"`
	Longitude     float64 `yaml:"longitude" validate:"min=-180,max=180"`
	FixedCapacity int     `yaml:"fixed_capacity" validate:"min=0"`
}

// Default returns the configuration used when no file is provided: the
// upstream reservation API, the built-in huts and a dataset in the working
// directory. Polling is on; a config file has to opt in explicitly.
func Default() *Config {
	cfg := &Config{}
	cfg.Poller.Enabled = true
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration from the given path, fills unset fields with
// defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 5
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 300
	}

	if c.Poller.IntervalSeconds <= 0 {
		c.Poller.IntervalSeconds = 3600
	}
	c.Poller.Interval = time.Duration(c.Poller.IntervalSeconds) * time.Second
	if c.Poller.URL == "" {
		c.Poller.URL = "https://www.hut-reservation.org/api/v1/reservation/getHutAvailability"
	}
	if c.Poller.UserAgent == "" {
		c.Poller.UserAgent = "Mozilla/5.0"
	}
	if c.Poller.TimeoutSeconds <= 0 {
		c.Poller.TimeoutSeconds = 30
	}
	c.Poller.Timeout = time.Duration(c.Poller.TimeoutSeconds) * time.Second

	if c.Dataset.Path == "" {
		c.Dataset.Path = "./historie.csv"
	}
	if c.Dataset.Timezone == "" {
		c.Dataset.Timezone = "Europe/Vienna"
	}

	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.Weather.Timezone == "" {
		c.Weather.Timezone = "Europe/Vienna"
	}
	if c.Weather.TimeoutSeconds <= 0 {
		c.Weather.TimeoutSeconds = 10
	}
	if c.Weather.CacheTTLSeconds <= 0 {
		c.Weather.CacheTTLSeconds = 3600
	}
}

// Validate checks field constraints after defaulting.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location resolves the dataset timezone. Retrieval dates and the map
// marker's notion of today use the calendar date in this zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dataset.Timezone)
	if err != nil {
		log.Printf("Warning: invalid dataset timezone %q: %v. Using UTC.", c.Dataset.Timezone, err)
		return time.UTC
	}
	return loc
}

// Registry builds the hut registry from the configured huts, falling back to
// the built-in registry when none are configured. Order follows the config
// file and determines dataset row order within a pass.
func (c *Config) Registry() *hut.Registry {
	if len(c.Huts) == 0 {
		return hut.Default()
	}
	descriptors := make([]hut.Descriptor, 0, len(c.Huts))
	for _, h := range c.Huts {
		descriptors = append(descriptors, hut.Descriptor{
			Name:          h.Name,
			UpstreamID:    h.HutID,
			Latitude:      h.Latitude,
			Longitude:     h.Longitude,
			FixedCapacity: h.FixedCapacity,
		})
	}
	return hut.NewRegistry(descriptors)
}
