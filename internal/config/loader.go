// Package config provides configuration management for the Courtside model core.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("COURTSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("COURTSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setModelDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setModelDefaults applies the recognized defaults for every model option.
func setModelDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("model.input_dim", 84)
	v.SetDefault("model.latent_dim", 16)
	v.SetDefault("model.learning_rate", 0.01)
	v.SetDefault("model.feedback_threshold", 1.5)
	v.SetDefault("model.initial_alpha", 0.3)
	v.SetDefault("model.alpha_decay_rate", 0.995)
	v.SetDefault("model.min_alpha", 0.01)
	v.SetDefault("model.initial_uncertainty", 1.0)
	v.SetDefault("model.min_uncertainty", 0.05)
	v.SetDefault("model.uncertainty_decay_rate", 0.97)
	v.SetDefault("model.convergence_threshold", 0.005)
	v.SetDefault("model.stability_window", 20)
	v.SetDefault("model.min_games", 3)

	v.SetDefault("simulation.iterations", 10000)

	v.SetDefault("pipeline.max_update_attempts", 3)
	v.SetDefault("pipeline.backoff_base_millis", 500)
	v.SetDefault("pipeline.backoff_max_millis", 30000)
	v.SetDefault("pipeline.game_timeout_seconds", 120)
	v.SetDefault("pipeline.absolute_error_ceiling", 4.0)
	v.SetDefault("pipeline.model_cache_ttl_seconds", 300)

	v.SetDefault("monitor.history_size", 200)
	v.SetDefault("monitor.degradation_threshold", 0.1)
	v.SetDefault("monitor.feedback_rate_ceiling", 0.8)
	v.SetDefault("monitor.cooldown_minutes", 30)

	v.SetDefault("betting.min_edge", 0.03)
	v.SetDefault("betting.kelly_fraction", 0.25)
}

// ReloadFromEnv reloads specific configuration values from environment variables
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("COURTSIDE_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
