// Package config loads scan settings from sebastes.yaml, the environment and
// an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the scan configuration shared by every command. Values
// layer as defaults, then sebastes.yaml, then SEBASTES_* environment
// variables; command flags override on top.
type Config struct {
	Address       string `mapstructure:"address"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	EntryPoint    string `mapstructure:"entry_point"`
	Output        string `mapstructure:"output"`
	Module        string `mapstructure:"module"`
	MaxModels     int    `mapstructure:"max_models"`
	MaxCollection int    `mapstructure:"max_collection"`
}

// Load loads the configuration from sebastes.yml or sebastes.yaml
func Load() (*Config, error) {
	// A .env in the working directory feeds the environment before viper
	// reads it. Missing files are fine.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults. Credential keys default empty so environment overrides
	// reach Unmarshal.
	v.SetDefault("address", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("entry_point", "/redfish/v1/")
	v.SetDefault("output", ".")
	v.SetDefault("module", "redfishlib")
	v.SetDefault("max_models", 500)
	v.SetDefault("max_collection", 50)

	// Set config name and paths
	v.SetConfigName("sebastes")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("SEBASTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

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
	if !strings.HasPrefix(cfg.EntryPoint, "/") {
		return fmt.Errorf("entry_point must start with '/', got: %s", cfg.EntryPoint)
	}
	if cfg.MaxModels <= 0 {
		return fmt.Errorf("max_models must be positive, got: %d", cfg.MaxModels)
	}
	if cfg.MaxCollection <= 0 {
		return fmt.Errorf("max_collection must be positive, got: %d", cfg.MaxCollection)
	}
	if cfg.Module == "" {
		return fmt.Errorf("module must not be empty")
	}
	return nil
}
