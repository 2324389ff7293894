// Package config loads folio settings from .env, the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every folio setting.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	WebURL         string        `mapstructure:"web_url"`
	AccessToken    string        `mapstructure:"access_token"`
	PageSize       int           `mapstructure:"page_size"`
	SearchPageSize int           `mapstructure:"search_page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	LogLevel       string        `mapstructure:"log_level"`
}

var keys = []string{
	"api_url", "web_url", "access_token", "page_size",
	"search_page_size", "timeout", "rate_limit", "log_level",
}

// Dir returns the configuration directory path.
func Dir() string {
	if dir := os.Getenv("FOLIO_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "folio")
}

// Load reads configuration. Values from the process environment win over
// .env, which wins over the config file, which wins over defaults.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal; only a malformed one is an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("web_url", "http://localhost:3000")
	v.SetDefault("access_token", "")
	v.SetDefault("page_size", 10)
	v.SetDefault("search_page_size", 12)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("log_level", "info")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"api_url": c.APIURL, "web_url": c.WebURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s: %q (must be an http or https URL)", name, raw)
		}
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page_size: %d (must be positive)", c.PageSize)
	}
	if c.SearchPageSize <= 0 {
		return fmt.Errorf("invalid search_page_size: %d (must be positive)", c.SearchPageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s (must be positive)", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit: %v (must be zero or positive)", c.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// RedactedToken returns the access token safe for display.
func (c *Config) RedactedToken() string {
	switch {
	case c.AccessToken == "":
		return "(not set)"
	case len(c.AccessToken) <= 8:
		return "********"
	default:
		return c.AccessToken[:4] + "…" + c.AccessToken[len(c.AccessToken)-4:]
	}
}
