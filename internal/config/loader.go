// Package config provides configuration management for the race simulator.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "RACESIM"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if len(cfg.Strength.TrackCategories) == 0 {
		cfg.Strength.TrackCategories = DefaultTrackCategories()
	}
	return cfg, nil
}

// setDefaults registers the defaults of the simulation model
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "racesim")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 4)

	v.SetDefault("stats.source", "file")
	v.SetDefault("stats.http.timeout_seconds", 30)
	v.SetDefault("stats.http.max_retries", 3)
	v.SetDefault("stats.http.rate_limit", 5.0)
	v.SetDefault("stats.http.circuit_breaker_max", 5)
	v.SetDefault("stats.cache_ttl_seconds", 300)
	v.SetDefault("stats.cache_max_size", 10000)

	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.max_simulations", 100000)
	v.SetDefault("simulation.default_simulations", 1000)
	v.SetDefault("simulation.grid_noise", 1.0)
	v.SetDefault("simulation.stage_noise", 0.6)
	v.SetDefault("simulation.final_noise", 0.5)
	v.SetDefault("simulation.pit_std_dev", 2.0)
	v.SetDefault("simulation.position_bonus", 0.01)

	v.SetDefault("strength.field_size", 20.0)
	v.SetDefault("strength.floor_strength", 0.5)
	v.SetDefault("strength.qualifying_coefficient", 0.005)
	v.SetDefault("strength.weights.base", 0.4)
	v.SetDefault("strength.weights.recency", 0.3)
	v.SetDefault("strength.weights.track", 0.3)
	v.SetDefault("strength.recent_races", 5)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// DefaultTrackCategories returns the built-in track type catalogue
func DefaultTrackCategories() []TrackCategoryConfig {
	return []TrackCategoryConfig{
		{TrackType: "Intermediate", Category: "paved"},
		{TrackType: "Short Track", Category: "paved"},
		{TrackType: "Superspeedway", Category: "paved"},
		{TrackType: "Flat", Category: "paved"},
		{TrackType: "Concrete", Category: "paved"},
		{TrackType: "Road Course", Category: "road"},
	}
}
