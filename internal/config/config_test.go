// Package config provides configuration management for ScoreSight.
package config

import (
	"strings"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	scoresightName               = "scoresight"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	testModelURLVar              = "TEST_MODEL_URL"
	expandedModelURL             = "http://models.internal:8000"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != scoresightName {
		t.Errorf("expected app name '%s', got '%s'", scoresightName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Models.Goals.Kind != ModelKindLinear {
		t.Errorf("expected goals model kind '%s', got '%s'", ModelKindLinear, cfg.Models.Goals.Kind)
	}

	if !cfg.Models.Goals.Cached() {
		t.Error("expected goals model to be cached")
	}

	if cfg.Models.Champion.Enabled() {
		t.Error("expected champion model slot to be disabled")
	}

	if !cfg.Models.Assists.Guarded() || cfg.Models.Assists.BreakerCooldownSeconds != 30 {
		t.Errorf("expected assists model behind a breaker with 30s cooldown, got %+v", cfg.Models.Assists)
	}

	if cfg.Models.Match.Address != "localhost:50051" {
		t.Errorf("expected match model address 'localhost:50051', got '%s'", cfg.Models.Match.Address)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error message: %v", err)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.App.Name != scoresightName {
		t.Errorf("expected default app name '%s', got '%s'", scoresightName, cfg.App.Name)
	}
	if !cfg.Heuristics.AnchorsEnabled {
		t.Error("expected anchors to be enabled by default")
	}
	for target, slot := range cfg.Models.ByTarget() {
		if slot.Enabled() {
			t.Errorf("expected model slot %s to be disabled by default", target)
		}
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

// TestEnvironmentVariableExpansion tests ${VAR} placeholders in YAML
func TestEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testModelURLVar, expandedModelURL)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.Models.Points.URL != expandedModelURL {
		t.Errorf("expected expanded url '%s', got '%s'", expandedModelURL, cfg.Models.Points.URL)
	}
}

// TestEnvironmentOverride tests SCORESIGHT_ prefixed overrides
func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SCORESIGHT_APP_LOG_LEVEL", "debug")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.App.LogLevel)
	}
}

// TestValidateConfig tests validation of a valid configuration
func TestValidateConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func validBaseConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        scoresightName,
			Environment: developmentEnv,
			LogLevel:    "info",
		},
		Heuristics: HeuristicsConfig{AnchorsEnabled: true},
		Models: ModelsConfig{
			Goals:    ModelConfig{Kind: ModelKindNone},
			Assists:  ModelConfig{Kind: ModelKindNone},
			Champion: ModelConfig{Kind: ModelKindNone},
			Match:    ModelConfig{Kind: ModelKindNone},
			Points:   ModelConfig{Kind: ModelKindNone},
		},
		Metrics:    MetricsConfig{Enabled: true},
	}
}

// TestValidateInvalidConfigs covers the field and cross-field rules
func TestValidateInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.App.Environment = invalidEnv },
			wantErr: "development, staging, production",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.App.LogLevel = "verbose" },
			wantErr: "debug, info, warn, error",
		},
		{
			name:    "unknown model kind",
			mutate:  func(c *Config) { c.Models.Goals.Kind = "onnx" },
			wantErr: "none, linear, http, grpc",
		},
		{
			name:    "linear without path",
			mutate:  func(c *Config) { c.Models.Goals.Kind = ModelKindLinear },
			wantErr: "models.goals: linear model requires path",
		},
		{
			name: "http without sidecar",
			mutate: func(c *Config) {
				c.Models.Assists = ModelConfig{Kind: ModelKindHTTP, URL: "http://localhost:8000"}
			},
			wantErr: "models.assists: http model requires sidecar",
		},
		{
			name: "http with bad url",
			mutate: func(c *Config) {
				c.Models.Assists = ModelConfig{Kind: ModelKindHTTP, URL: "not a url", Sidecar: "x.json"}
			},
			wantErr: "must be a valid URL",
		},
		{
			name:    "grpc without address",
			mutate:  func(c *Config) { c.Models.Match = ModelConfig{Kind: ModelKindGRPC, Sidecar: "x.json"} },
			wantErr: "models.match: grpc model requires address",
		},
		{
			name: "cache ttl without size",
			mutate: func(c *Config) {
				c.Models.Points = ModelConfig{Kind: ModelKindLinear, Path: "p.json", CacheTTLSeconds: 60}
			},
			wantErr: "cache_max_size",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Models.Champion.TimeoutSeconds = -1 },
			wantErr: "numeric constraint gte violated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestEnvironmentHelpers tests the environment predicates
func TestEnvironmentHelpers(t *testing.T) {
	cfg := validBaseConfig()
	if !cfg.IsDevelopment() || cfg.IsStaging() || cfg.IsProduction() {
		t.Error("expected development environment only")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected production environment only")
	}
}
