// Package config provides configuration management for the Courtside model core.
package config

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// TestParseSecretDataFromString tests parsing a JSON secret string
func TestParseSecretDataFromString(t *testing.T) {
	payload := `{"database_password": "db-secret", "provider_api_key": "api-secret", "odds_stream_token": "stream-secret"}`
	result := &secretsmanager.GetSecretValueOutput{SecretString: aws.String(payload)}

	secrets, err := parseSecretData(result)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if secrets.DatabasePassword != "db-secret" {
		t.Errorf("expected database password 'db-secret', got '%s'", secrets.DatabasePassword)
	}
	if secrets.ProviderAPIKey != "api-secret" {
		t.Errorf("expected provider API key 'api-secret', got '%s'", secrets.ProviderAPIKey)
	}
	if secrets.OddsStreamToken != "stream-secret" {
		t.Errorf("expected odds stream token 'stream-secret', got '%s'", secrets.OddsStreamToken)
	}
}

// TestParseSecretDataFromBinary tests parsing a binary secret payload
func TestParseSecretDataFromBinary(t *testing.T) {
	result := &secretsmanager.GetSecretValueOutput{
		SecretBinary: []byte(`{"database_password": "binary-secret"}`),
	}

	secrets, err := parseSecretData(result)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if secrets.DatabasePassword != "binary-secret" {
		t.Errorf("expected 'binary-secret', got '%s'", secrets.DatabasePassword)
	}
}

// TestParseSecretDataEmpty tests handling of a response with no data
func TestParseSecretDataEmpty(t *testing.T) {
	if _, err := parseSecretData(&secretsmanager.GetSecretValueOutput{}); err == nil {
		t.Fatal("expected error for empty secret response")
	}
}

// TestParseSecretDataInvalidJSON tests handling of malformed secret JSON
func TestParseSecretDataInvalidJSON(t *testing.T) {
	result := &secretsmanager.GetSecretValueOutput{SecretString: aws.String("not json")}
	if _, err := parseSecretData(result); err == nil {
		t.Fatal("expected error for malformed secret JSON")
	}
}

// TestOverlaySecretsOnConfig tests applying secrets onto a loaded config
func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg := mustLoadValid(t)

	overlaySecretsOnConfig(cfg, &SecretsOverlay{DatabasePassword: "rotated", ProviderAPIKey: "rotated-key"})

	if cfg.Database.Password != "rotated" {
		t.Errorf("expected rotated database password, got '%s'", cfg.Database.Password)
	}
	if cfg.Provider.APIKey != "rotated-key" {
		t.Errorf("expected rotated API key, got '%s'", cfg.Provider.APIKey)
	}

	// Empty overlay fields leave the existing values alone.
	overlaySecretsOnConfig(cfg, &SecretsOverlay{})
	if cfg.Database.Password != "rotated" {
		t.Errorf("empty overlay must not clear values, got '%s'", cfg.Database.Password)
	}
}
