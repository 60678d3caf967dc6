// ABOUTME: Structured logging setup for the REST server.
// ABOUTME: Production/development zap config split selected by environment.
package api

import "go.uber.org/zap"

// NewLogger creates a zap.Logger depending on the environment.
func NewLogger(env string) *zap.Logger {
	if env == "production" {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
