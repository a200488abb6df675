// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DBURL              string        `mapstructure:"DB_URL"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	TopN               int           `mapstructure:"TOP_N"`
	ActivityWindowDays int           `mapstructure:"ACTIVITY_WINDOW_DAYS"`
	FetchConcurrency   int           `mapstructure:"FETCH_CONCURRENCY"`
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	APIAddr            string        `mapstructure:"API_ADDR"`
}

// LoadParserConfig reads the ingestion pipeline configuration. The GitHub
// token is required on top of the shared storage settings.
func LoadParserConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.TopN <= 0 {
		return nil, errors.New("TOP_N must be a positive integer")
	}
	if cfg.ActivityWindowDays <= 0 {
		return nil, errors.New("ACTIVITY_WINDOW_DAYS must be a positive integer")
	}
	if cfg.FetchConcurrency <= 0 {
		return nil, errors.New("FETCH_CONCURRENCY must be a positive integer")
	}
	return cfg, nil
}

// LoadAPIConfig reads the read-API configuration.
func LoadAPIConfig() (*Config, error) {
	return load()
}

// load reads configuration from file and/or environment variables.
func load() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TOP_N", 100)
	viper.SetDefault("ACTIVITY_WINDOW_DAYS", 30)
	viper.SetDefault("FETCH_CONCURRENCY", 10)
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("API_ADDR", ":8080")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate shared required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}

	return &cfg, nil
}
