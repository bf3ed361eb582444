package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (ODM_STORE_URL, ...)
const EnvPrefix = "ODM"

// Config represents the odm tool configuration
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Hooks HooksConfig `mapstructure:"hooks"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig represents document store configuration
type StoreConfig struct {
	URL       string `mapstructure:"url"`
	SQLDriver string `mapstructure:"sql_driver"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// HooksConfig represents lifecycle hook configuration
type HooksConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("store.url", "memory://")
	v.SetDefault("store.sql_driver", "pgx")
	v.SetDefault("store.key_prefix", "odm:")
	v.SetDefault("hooks.timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads the configuration from odm.yml or odm.yaml in the working
// directory. A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("odm")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile loads the configuration from an explicit path
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Store.URL == "" {
		return fmt.Errorf("store.url must not be empty")
	}
	switch cfg.Store.SQLDriver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("store.sql_driver must be 'pgx' or 'postgres', got: %s", cfg.Store.SQLDriver)
	}
	if cfg.Hooks.Timeout < 0 {
		return fmt.Errorf("hooks.timeout must not be negative, got: %s", cfg.Hooks.Timeout)
	}
	return nil
}
