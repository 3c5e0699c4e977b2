package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service endpoints and search defaults
type Config struct {
	Services struct {
		HotelSearchURL string `yaml:"hotel_search_url"`
		ResourceURL    string `yaml:"resource_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"services"`

	Search struct {
		PageSize         int `yaml:"page_size"`
		MaxPages         int `yaml:"max_pages"`
		LoadMoreDebounce int `yaml:"load_more_debounce_ms"`
	} `yaml:"search"`

	Filters struct {
		MinReviews int     `yaml:"min_reviews"`
		MinPrice   float64 `yaml:"min_price"`
		MaxPrice   float64 `yaml:"max_price"`
		MinStars   float64 `yaml:"min_stars"`
	} `yaml:"filters"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Services.HotelSearchURL = "http://localhost:8080"
	cfg.Services.ResourceURL = "http://localhost:8081"
	cfg.Services.TimeoutSeconds = 30
	cfg.Search.PageSize = 20
	cfg.Search.MaxPages = 5
	cfg.Search.LoadMoreDebounce = 100
	cfg.Filters.MinReviews = 0
	cfg.Filters.MinPrice = 0
	cfg.Filters.MaxPrice = 1000000000
	cfg.Filters.MinStars = 0.0
	return cfg
}

// Timeout returns the HTTP timeout as a duration
func (c *Config) Timeout() time.Duration {
	if c.Services.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Services.TimeoutSeconds) * time.Second
}

// Debounce returns the load-more debounce interval as a duration
func (c *Config) Debounce() time.Duration {
	if c.Search.LoadMoreDebounce <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Search.LoadMoreDebounce) * time.Millisecond
}
