package internal

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide sugared logger for the API server, the
// filing fetcher, and the monitoring runner. ENVIRONMENT=development switches
// to the human-readable development config.
func NewLogger() (*zap.SugaredLogger, error) {
	build := zap.NewProduction
	if os.Getenv("ENVIRONMENT") == "development" {
		build = zap.NewDevelopment
	}

	logger, err := build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}
