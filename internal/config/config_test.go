// Package config provides configuration management for the Courtside model core.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg    = "expected no error, got %v"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "courtside" {
		t.Errorf("expected app name 'courtside', got '%s'", cfg.App.Name)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}

	if cfg.Model.InputDim != 84 {
		t.Errorf("expected input_dim 84, got %d", cfg.Model.InputDim)
	}

	if cfg.Model.LatentDim != 16 {
		t.Errorf("expected latent_dim 16, got %d", cfg.Model.LatentDim)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigExpandsEnvironmentVariables tests ${VAR} expansion in YAML
func TestLoadConfigExpandsEnvironmentVariables(t *testing.T) {
	os.Setenv("COURTSIDE_TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("COURTSIDE_TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults fill in without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Model.InputDim != 84 {
		t.Errorf("expected default input_dim 84, got %d", cfg.Model.InputDim)
	}
	if cfg.Model.LatentDim != 16 {
		t.Errorf("expected default latent_dim 16, got %d", cfg.Model.LatentDim)
	}
	if cfg.Model.FeedbackThreshold != 1.5 {
		t.Errorf("expected default feedback_threshold 1.5, got %g", cfg.Model.FeedbackThreshold)
	}
	if cfg.Pipeline.MaxUpdateAttempts != 3 {
		t.Errorf("expected default max_update_attempts 3, got %d", cfg.Pipeline.MaxUpdateAttempts)
	}
	if cfg.Simulation.Iterations != 10000 {
		t.Errorf("expected default iterations 10000, got %d", cfg.Simulation.Iterations)
	}
	if cfg.Monitor.HistorySize != 200 {
		t.Errorf("expected default history_size 200, got %d", cfg.Monitor.HistorySize)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.App.Environment = "invalid"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected environment in error, got: %v", err)
	}
}

// TestValidateInvalidLogLevel tests validation of invalid log level
func TestValidateInvalidLogLevel(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.App.LogLevel = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

// TestValidateAlphaOrdering tests the min_alpha/initial_alpha cross-field rule
func TestValidateAlphaOrdering(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.Model.MinAlpha = 0.5
	cfg.Model.InitialAlpha = 0.3

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error when min_alpha exceeds initial_alpha")
	}
	if !strings.Contains(err.Error(), "min_alpha") {
		t.Errorf("expected min_alpha in error, got: %v", err)
	}
}

// TestValidateUncertaintyOrdering tests the uncertainty cross-field rule
func TestValidateUncertaintyOrdering(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.Model.MinUncertainty = 2.0
	cfg.Model.InitialUncertainty = 1.0

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when min_uncertainty exceeds initial_uncertainty")
	}
}

// TestValidateBackoffOrdering tests the backoff cross-field rule
func TestValidateBackoffOrdering(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.Pipeline.BackoffBaseMillis = 60000
	cfg.Pipeline.BackoffMaxMillis = 1000

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when backoff base exceeds max")
	}
}

// TestValidateProductionRequirements tests production-only constraints
func TestValidateProductionRequirements(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production without SSL")
	}

	cfg.Database.SSLMode = "require"
	cfg.Provider.APIKey = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production without an API key")
	}

	cfg.Provider.APIKey = "prod-key"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected production config to validate, got %v", err)
	}
}

// TestValidateOddsFeedRequiresURL tests the odds feed cross-field rule
func TestValidateOddsFeedRequiresURL(t *testing.T) {
	cfg := mustLoadValid(t)
	cfg.OddsFeed.Enabled = true
	cfg.OddsFeed.StreamURL = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for enabled odds feed without a stream URL")
	}
}

// TestPipelineDurations tests the duration accessors
func TestPipelineDurations(t *testing.T) {
	cfg := mustLoadValid(t)

	if cfg.Pipeline.BackoffBase().Milliseconds() != 500 {
		t.Errorf("expected 500ms backoff base, got %v", cfg.Pipeline.BackoffBase())
	}
	if cfg.Pipeline.BackoffMax().Milliseconds() != 30000 {
		t.Errorf("expected 30s backoff max, got %v", cfg.Pipeline.BackoffMax())
	}
	if cfg.Pipeline.GameTimeout().Seconds() != 120 {
		t.Errorf("expected 120s game timeout, got %v", cfg.Pipeline.GameTimeout())
	}
}

// TestGetDatabaseDSN tests DSN construction
func TestGetDatabaseDSN(t *testing.T) {
	cfg := mustLoadValid(t)

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected postgres:// prefix, got %s", dsn)
	}
	if !strings.Contains(dsn, "localhost:5432") {
		t.Errorf("expected host and port in DSN, got %s", dsn)
	}
}

func mustLoadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	return cfg
}
