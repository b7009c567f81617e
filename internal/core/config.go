package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for newsdeck
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Feed     FeedConfig     `json:"feed"`
	Refresh  RefreshConfig  `json:"refresh"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// FeedConfig contains remote feed (NewsAPI) configuration
type FeedConfig struct {
	APIKey    string        `json:"-"`
	BaseURL   string        `json:"base_url"`
	Country   string        `json:"country"`
	PageSize  int           `json:"page_size"`
	UserAgent string        `json:"user_agent"`
	Timeout   time.Duration `json:"timeout"`
}

// RefreshConfig controls the background headline refresher.
// An interval of 0 disables background refreshes entirely.
type RefreshConfig struct {
	Interval   time.Duration `json:"interval"`
	Categories []string      `json:"categories"`
	MaxWorkers int           `json:"max_workers"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("NEWSDECK_PORT", 4100),
			Host: getEnvOrDefault("NEWSDECK_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("NEWSDECK_DB_PATH", "./newsdeck.db"),
		},
		Feed: FeedConfig{
			APIKey:    getEnvOrDefault("NEWSDECK_NEWSAPI_KEY", ""),
			BaseURL:   getEnvOrDefault("NEWSDECK_NEWSAPI_URL", "https://newsapi.org"),
			Country:   getEnvOrDefault("NEWSDECK_NEWSAPI_COUNTRY", "us"),
			PageSize:  getEnvAsInt("NEWSDECK_NEWSAPI_PAGE_SIZE", 20),
			UserAgent: getEnvOrDefault("NEWSDECK_USER_AGENT", "newsdeck/1.0"),
			Timeout:   time.Duration(getEnvAsInt("NEWSDECK_NEWSAPI_TIMEOUT", 30)) * time.Second,
		},
		Refresh: RefreshConfig{
			Interval:   time.Duration(getEnvAsInt("NEWSDECK_REFRESH_INTERVAL", 30)) * time.Minute,
			Categories: getEnvAsList("NEWSDECK_REFRESH_CATEGORIES", "general"),
			MaxWorkers: getEnvAsInt("NEWSDECK_REFRESH_WORKERS", 2),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Feed.APIKey == "" {
		return fmt.Errorf("NewsAPI key is required")
	}

	if c.Feed.BaseURL == "" {
		return fmt.Errorf("NewsAPI base URL is required")
	}

	if c.Feed.PageSize <= 0 || c.Feed.PageSize > 100 {
		return fmt.Errorf("invalid NewsAPI page size: %d", c.Feed.PageSize)
	}

	if c.Refresh.Interval < 0 {
		return fmt.Errorf("invalid refresh interval: %s", c.Refresh.Interval)
	}

	if c.Refresh.MaxWorkers <= 0 {
		return fmt.Errorf("invalid refresh worker count: %d", c.Refresh.MaxWorkers)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	value := getEnvOrDefault(key, defaultValue)

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
