// Package logger configures the structured logger shared by every courtside
// binary, plus a domain-specific entry wrapper for model events.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. The level comes from configuration and
// unknown values fall back to info. Production runs emit JSON for the log
// pipeline; everything else gets colored text for terminal use.
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
