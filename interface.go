package logging

// Logger provides structured logging. Prefer the structured methods
// (InfoWith, ErrorWith, etc.) over the plain-string methods on Service for
// better queryability.
type Logger interface {
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	DebugWith() LogEvent
	FatalWith() LogEvent

	// With creates a new logger with pre-populated fields included in all
	// subsequent logs.
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext
}
