// Package config provides configuration management for ScoreSight.
package config

// Model kinds accepted in ModelConfig.Kind
const (
	ModelKindNone   = "none"
	ModelKindLinear = "linear"
	ModelKindHTTP   = "http"
	ModelKindGRPC   = "grpc"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics"`
	Models     ModelsConfig     `mapstructure:"models"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// HeuristicsConfig tunes the fallback formulas
type HeuristicsConfig struct {
	// AnchorsEnabled keeps the pinned calibration fixtures active
	AnchorsEnabled bool `mapstructure:"anchors_enabled"`
}

// ModelsConfig holds one model slot per prediction target
type ModelsConfig struct {
	Goals    ModelConfig `mapstructure:"goals"`
	Assists  ModelConfig `mapstructure:"assists"`
	Champion ModelConfig `mapstructure:"champion"`
	Match    ModelConfig `mapstructure:"match"`
	Points   ModelConfig `mapstructure:"points"`
}

// ByTarget returns the model slots keyed by target name
func (m ModelsConfig) ByTarget() map[string]ModelConfig {
	return map[string]ModelConfig{
		"goals":    m.Goals,
		"assists":  m.Assists,
		"champion": m.Champion,
		"match":    m.Match,
		"points":   m.Points,
	}
}

// ModelConfig describes where a trained model for one target lives
type ModelConfig struct {
	Kind            string  `mapstructure:"kind" validate:"omitempty,modelkind"`
	Path            string  `mapstructure:"path"`
	Sidecar         string  `mapstructure:"sidecar"`
	URL             string  `mapstructure:"url" validate:"omitempty,url"`
	Address         string  `mapstructure:"address"`
	ModelVersion    string  `mapstructure:"model_version"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts   int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int     `mapstructure:"cache_max_size" validate:"gte=0"`

	// Circuit breaker; zero failures disables it
	BreakerFailures        int `mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerWindowSeconds   int `mapstructure:"breaker_window_seconds" validate:"gte=0"`
	BreakerCooldownSeconds int `mapstructure:"breaker_cooldown_seconds" validate:"gte=0"`
}

// Enabled reports whether a model is configured for the slot
func (m ModelConfig) Enabled() bool {
	return m.Kind != "" && m.Kind != ModelKindNone
}

// Cached reports whether model answers should be cached
func (m ModelConfig) Cached() bool {
	return m.CacheTTLSeconds > 0
}

// Guarded reports whether model calls go through a circuit breaker
func (m ModelConfig) Guarded() bool {
	return m.BreakerFailures > 0
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
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
