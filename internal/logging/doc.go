// Package logging provides structured logging for cook sessions.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation so that a session's rounds, agents and failures can be
// filtered after the fact.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	sessionLogger := logger.WithSession("9f1c...")
//	sessionLogger.WithAgent("api-designer").Warn("attempt failed", "attempt", 2)
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"attempt failed","session_id":"9f1c...","agent":"api-designer","attempt":2}
//
// # Log Rotation
//
// Use [NewLoggerWithRotation] to cap the size of cook.log. Rotated files are
// named cook.log.1 (newest) through cook.log.N.
//
// # Testing
//
// Use [NopLogger] to discard all output.
package logging
