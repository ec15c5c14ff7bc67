// Package logger defines the logging interface consumed by the scheduling
// packages. Implementations live under infra/logger so that core code never
// depends on a concrete logging library.
package logger

// Logger is the severity-leveled logging surface used throughout the
// scheduler.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a debug message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger is the optional structured-field capability, implemented
// by the zerolog adapter.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}
