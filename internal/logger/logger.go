// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance. Production environments
// log JSON, everything else logs colored text. A nil out writes to stderr so
// command output on stdout stays machine readable.
func NewLogger(logLevel, environment string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
