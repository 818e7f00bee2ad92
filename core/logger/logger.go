// Package logger defines the logging contract shared by the settlement
// engine, the market and its adapters. The zerolog implementation lives in
// infra/logger.
package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields, used for settlement
	// budgets and per-run diagnostics.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
