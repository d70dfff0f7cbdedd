// Package config provides configuration management for ScoreSight.
package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("modelkind", validateModelKind)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateModelKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ModelKindNone, ModelKindLinear, ModelKindHTTP, ModelKindGRPC:
		return true
	default:
		return false
	}
}

// validateCrossField checks that each enabled model slot has what its kind needs
func validateCrossField(cfg *Config) error {
	slots := cfg.Models.ByTarget()
	targets := make([]string, 0, len(slots))
	for target := range slots {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		m := slots[target]
		switch m.Kind {
		case ModelKindLinear:
			if m.Path == "" {
				return fmt.Errorf("models.%s: linear model requires path", target)
			}
		case ModelKindHTTP:
			if m.URL == "" {
				return fmt.Errorf("models.%s: http model requires url", target)
			}
			if m.Sidecar == "" {
				return fmt.Errorf("models.%s: http model requires sidecar", target)
			}
		case ModelKindGRPC:
			if m.Address == "" {
				return fmt.Errorf("models.%s: grpc model requires address", target)
			}
			if m.Sidecar == "" {
				return fmt.Errorf("models.%s: grpc model requires sidecar", target)
			}
		}
		if m.Cached() && m.CacheMaxSize == 0 {
			return fmt.Errorf("models.%s: cache_max_size must be set when cache_ttl_seconds is", target)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "modelkind":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: none, linear, http, grpc, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
