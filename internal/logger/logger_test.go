package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("info").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.ErrorLevel, NewLogger("error").GetLevel())

	// Unparseable levels fall back to info.
	assert.Equal(t, logrus.InfoLevel, NewLogger("noisy").GetLevel())
}

func TestNewLoggerProductionFormat(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	defer os.Unsetenv("ENVIRONMENT")

	log := NewLogger("info")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "production logging must be JSON")
}

func TestModelLoggerTrainingStep(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogTrainingStep("g1", 1.234, 0.567, 0.28, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "g1", logEntry["game_id"])
	assert.Equal(t, "model", logEntry["component"])
	assert.Equal(t, 1.234, logEntry["nn_loss"])
	assert.Equal(t, true, logEntry["feedback_triggered"])
}

func TestModelLoggerGameUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogGameUpdate("g1", "updated", 2, 850)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "updated", logEntry["outcome"])
	assert.Equal(t, float64(2), logEntry["attempts"])
}

func TestModelLoggerTeamStateUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogTeamStateUpdate("duke", 12, 0.42, 0.18)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "duke", logEntry["team_id"])
	assert.Equal(t, 0.42, logEntry["mean_uncertainty"])
}

func TestModelLoggerDegradationAlert(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogDegradationAlert("high", "accuracy", 0.61, 0.78)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "high", logEntry["severity"])
	assert.Equal(t, "accuracy", logEntry["metric"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestModelLoggerSimulation(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogSimulation("duke", "unc", 10000, 0.64, 120)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "duke", logEntry["home_team"])
	assert.Equal(t, 0.64, logEntry["home_win_prob"])
}
