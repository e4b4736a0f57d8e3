// Package config provides configuration management for the race simulator.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Stats      StatsConfig      `mapstructure:"stats" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Strength   StrengthConfig   `mapstructure:"strength" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// StatsConfig selects and tunes the historical statistics source
type StatsConfig struct {
	Source          string     `mapstructure:"source" validate:"required,oneof=postgres file http"`
	FilePath        string     `mapstructure:"file_path"`
	HTTP            HTTPConfig `mapstructure:"http"`
	CacheTTLSeconds int        `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int        `mapstructure:"cache_max_size" validate:"gte=0"`
}

// HTTPConfig configures the remote race entries source
type HTTPConfig struct {
	URL               string  `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
}

// SimulationConfig represents Monte Carlo engine configuration
type SimulationConfig struct {
	Workers            int     `mapstructure:"workers" validate:"gte=0"`
	MaxSimulations     int     `mapstructure:"max_simulations" validate:"required,gt=0"`
	DefaultSimulations int     `mapstructure:"default_simulations" validate:"required,gt=0"`
	Seed               int64   `mapstructure:"seed"`
	GridNoise          float64 `mapstructure:"grid_noise" validate:"required,gt=0"`
	StageNoise         float64 `mapstructure:"stage_noise" validate:"required,gt=0"`
	FinalNoise         float64 `mapstructure:"final_noise" validate:"required,gt=0"`
	PitStdDev          float64 `mapstructure:"pit_std_dev" validate:"gte=0"`
	PositionBonus      float64 `mapstructure:"position_bonus" validate:"gte=0"`
}

// StrengthConfig represents the strength model constants
type StrengthConfig struct {
	FieldSize             float64               `mapstructure:"field_size" validate:"required,gt=0"`
	FloorStrength         float64               `mapstructure:"floor_strength" validate:"required,gt=0"`
	QualifyingCoefficient float64               `mapstructure:"qualifying_coefficient" validate:"gte=0"`
	Weights               WeightsConfig         `mapstructure:"weights"`
	RecentRaces           int                   `mapstructure:"recent_races" validate:"required,gt=0"`
	TrackCategories       []TrackCategoryConfig `mapstructure:"track_categories" validate:"required,min=1,dive"`
}

// WeightsConfig holds the blend weights of the strength components
type WeightsConfig struct {
	Base    float64 `mapstructure:"base" validate:"gte=0"`
	Recency float64 `mapstructure:"recency" validate:"gte=0"`
	Track   float64 `mapstructure:"track" validate:"gte=0"`
}

// TrackCategoryConfig maps a track type onto its generalized split category.
// It is a list rather than a map because viper lower-cases map keys.
type TrackCategoryConfig struct {
	TrackType string `mapstructure:"track_type" validate:"required"`
	Category  string `mapstructure:"category" validate:"required"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// TrackCategoryMap returns the track categories as a lookup map
func (s StrengthConfig) TrackCategoryMap() map[string]string {
	categories := make(map[string]string, len(s.TrackCategories))
	for _, tc := range s.TrackCategories {
		categories[tc.TrackType] = tc.Category
	}
	return categories
}
