// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"time"

	"report_gen/internal/config"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out with the configured level and format.
// An unknown level falls back to info.
func New(cfg config.Logging, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Invalid logging level, using info")
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}
