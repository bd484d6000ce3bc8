// Package config provides configuration management for the Courtside model core.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Provider   ProviderConfig   `mapstructure:"provider" validate:"required"`
	OddsFeed   OddsFeedConfig   `mapstructure:"odds_feed"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Monitor    MonitorConfig    `mapstructure:"monitor" validate:"required"`
	Betting    BettingConfig    `mapstructure:"betting"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProviderConfig represents the sports data provider API configuration
type ProviderConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"required,gte=0"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
}

// OddsFeedConfig represents the live market odds stream configuration
type OddsFeedConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	StreamURL         string `mapstructure:"stream_url"`
	Token             string `mapstructure:"token"`
	ReconnectSeconds  int    `mapstructure:"reconnect_seconds"`
	MaxReconnectDelay int    `mapstructure:"max_reconnect_delay"`
}

// ModelConfig parameterizes the encoder, predictor, trainer and Bayesian store.
type ModelConfig struct {
	InputDim             int     `mapstructure:"input_dim" validate:"required,gt=0"`
	LatentDim            int     `mapstructure:"latent_dim" validate:"required,gt=0"`
	LearningRate         float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	FeedbackThreshold    float64 `mapstructure:"feedback_threshold" validate:"required,gt=0"`
	InitialAlpha         float64 `mapstructure:"initial_alpha" validate:"required,gte=0,lte=1"`
	AlphaDecayRate       float64 `mapstructure:"alpha_decay_rate" validate:"required,gt=0,lte=1"`
	MinAlpha             float64 `mapstructure:"min_alpha" validate:"required,gte=0"`
	InitialUncertainty   float64 `mapstructure:"initial_uncertainty" validate:"required,gt=0"`
	MinUncertainty       float64 `mapstructure:"min_uncertainty" validate:"required,gt=0"`
	UncertaintyDecayRate float64 `mapstructure:"uncertainty_decay_rate" validate:"required,gt=0,lte=1"`
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold" validate:"required,gt=0"`
	StabilityWindow      int     `mapstructure:"stability_window" validate:"required,gt=0"`
	MinGames             int     `mapstructure:"min_games" validate:"gte=0"`
}

// SimulationConfig parameterizes the Monte Carlo simulator.
type SimulationConfig struct {
	Iterations int   `mapstructure:"iterations" validate:"required,gt=0"`
	Seed       int64 `mapstructure:"seed"`
}

// PipelineConfig parameterizes the post-game update orchestrator.
type PipelineConfig struct {
	MaxUpdateAttempts    int     `mapstructure:"max_update_attempts" validate:"required,gt=0"`
	BackoffBaseMillis    int     `mapstructure:"backoff_base_millis" validate:"required,gt=0"`
	BackoffMaxMillis     int     `mapstructure:"backoff_max_millis" validate:"required,gt=0"`
	GameTimeoutSeconds   int     `mapstructure:"game_timeout_seconds" validate:"required,gt=0"`
	AbsoluteErrorCeiling float64 `mapstructure:"absolute_error_ceiling" validate:"required,gt=0"`
	ModelCacheTTLSeconds int     `mapstructure:"model_cache_ttl_seconds" validate:"required,gt=0"`
}

// MonitorConfig parameterizes the performance monitor.
type MonitorConfig struct {
	HistorySize          int     `mapstructure:"history_size" validate:"required,gt=0"`
	DegradationThreshold float64 `mapstructure:"degradation_threshold" validate:"required,gt=0"`
	FeedbackRateCeiling  float64 `mapstructure:"feedback_rate_ceiling" validate:"required,gt=0,lte=1"`
	CooldownMinutes      int     `mapstructure:"cooldown_minutes" validate:"required,gt=0"`
}

// BettingConfig parameterizes the expected-value comparison layer.
type BettingConfig struct {
	MinEdge       float64 `mapstructure:"min_edge" validate:"gte=0"`
	MaxStake      float64 `mapstructure:"max_stake" validate:"gte=0"`
	KellyFraction float64 `mapstructure:"kelly_fraction" validate:"gte=0,lte=1"`
}

// ScheduleConfig represents cron scheduling for periodic jobs
type ScheduleConfig struct {
	PostGameSweep string `mapstructure:"post_game_sweep"`
	StateSnapshot string `mapstructure:"state_snapshot"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
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

// GameTimeout returns the per-game processing timeout as a duration.
func (c *PipelineConfig) GameTimeout() time.Duration {
	return time.Duration(c.GameTimeoutSeconds) * time.Second
}

// BackoffBase returns the initial retry delay.
func (c *PipelineConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMillis) * time.Millisecond
}

// BackoffMax returns the retry delay cap.
func (c *PipelineConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMillis) * time.Millisecond
}
