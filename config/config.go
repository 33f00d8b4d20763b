package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration. Tags use mapstructure for viper
// unmarshalling; every key is also bindable via environment variable.
type Config struct {
	APIBaseURL   string `mapstructure:"API_BASE_URL"`
	ImageBaseURL string `mapstructure:"IMAGE_BASE_URL"`
	SiteURL      string `mapstructure:"SITE_URL"`

	// HTTPTimeoutSec bounds every outbound request, refresh calls included,
	// so a hung refresh cannot stall the caller indefinitely.
	HTTPTimeoutSec int `mapstructure:"HTTP_TIMEOUT_SEC"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	// SessionFile is the path of the persisted session record. Empty means
	// the per-user default under the OS config directory.
	SessionFile string `mapstructure:"SESSION_FILE"`

	// RedisAddr selects the redis-backed session store when set. Used by
	// server-side deployments that share sessions across processes.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
}

// HTTPTimeout returns the request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// Load reads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("motomarkt")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/motomarkt/")
	v.AddConfigPath("$HOME/.motomarkt")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("API_BASE_URL", "https://api.motomarkt.example.com")
	v.SetDefault("IMAGE_BASE_URL", "https://images.motomarkt.example.com")
	v.SetDefault("SITE_URL", "https://www.motomarkt.example.com")
	v.SetDefault("HTTP_TIMEOUT_SEC", 15)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("REDIS_ADDR", "")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
