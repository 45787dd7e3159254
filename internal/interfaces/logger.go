// Package interfaces holds the small contracts shared across the designer's
// packages, so the registry, renderer and editor sessions can log without
// caring which backend is wired in.
package interfaces

// Logger is the structured logging contract used throughout the designer.
// The logging package ships a JSON stdout implementation for development and
// a zerolog-backed one for production; both satisfy this interface.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields. Sessions and
	// registries use it to pin their IDs onto every line they emit.
	With(fields ...Field) Logger
}

// Field is one key/value pair on a log line.
type Field struct {
	Key   string
	Value interface{}
}
