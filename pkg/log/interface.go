// Package log provides structured logging for checkpoint and state
// comparison operations.
//
// It defines a minimal logging interface with a zerolog implementation,
// plus domain attribute keys (comparison paths, tensor shapes, metric
// names) so log output stays analyzable across the library. The
// interface keeps packages decoupled from the concrete backend and
// makes tests able to capture output.
package log

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed diagnostic information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for potentially harmful situations.
	LevelWarn
	// LevelError is for failures.
	LevelError
)

// String returns the textual form of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is a structured logging interface. Fields are alternating
// key/value pairs, slog style.
//
// Example:
//
//	logger := log.GetLogger().With(log.ComponentKey, "compare")
//	logger.Debug("comparing state dicts",
//	    log.PathKey, "/state/model",
//	    log.OperationKey, "deep_compare",
//	)
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields pre-populated.
	With(fields ...any) Logger
}
