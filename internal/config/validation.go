// Package config provides configuration management for the race simulator.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// weightSumTolerance is the allowed deviation of the blend weights from 1.
const weightSumTolerance = 1e-6

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is required")
	}
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Simulation.DefaultSimulations > cfg.Simulation.MaxSimulations {
		return fmt.Errorf("default_simulations cannot exceed max_simulations")
	}

	w := cfg.Strength.Weights
	if math.Abs(w.Base+w.Recency+w.Track-1) > weightSumTolerance {
		return fmt.Errorf("strength weights must sum to 1, got %.4f", w.Base+w.Recency+w.Track)
	}

	seen := make(map[string]struct{}, len(cfg.Strength.TrackCategories))
	for _, tc := range cfg.Strength.TrackCategories {
		if _, dup := seen[tc.TrackType]; dup {
			return fmt.Errorf("track type '%s' is mapped more than once", tc.TrackType)
		}
		seen[tc.TrackType] = struct{}{}
	}

	switch cfg.Stats.Source {
	case "file":
		if cfg.Stats.FilePath == "" {
			return fmt.Errorf("stats.file_path is required when stats.source is 'file'")
		}
	case "http":
		if cfg.Stats.HTTP.URL == "" {
			return fmt.Errorf("stats.http.url is required when stats.source is 'http'")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when stats.source is 'postgres'")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
