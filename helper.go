package logging

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// buildErrorChain walks an error's wrap chain via errors.Unwrap and returns
// the messages outermost -> innermost, plus the innermost (root cause)
// message. It guards against excessive depth and repeated messages to avoid
// cycles.
func buildErrorChain(err error) (chain []string, root string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		err = errors.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, " -> ")
}

// logEventBuilder creates a tracked log event for the given level. The
// active-operations counter keeps Close from tearing down the sinks while
// the event is being built. If the level is disabled, or the service is nil
// or uninitialized, it returns a no-op LogEvent.
func logEventBuilder(s *Service, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}
	if level == zerolog.NoLevel {
		return newLogEvent(nil)
	}

	// Increment before acquiring the lock so Close can observe the
	// operation.
	s.activeOps.Add(1)

	s.mu.RLock()

	// Double-check after acquiring the lock
	if !s.isInitialized.Load() {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		return newLogEvent(nil)
	}

	logger := s.logger.Load()
	if logger == nil {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		return newLogEvent(nil)
	}

	if logger.GetLevel() > level {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		return newLogEvent(nil)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.TraceLevel:
		event = logger.Trace()
	case zerolog.DebugLevel:
		event = logger.Debug()
	case zerolog.InfoLevel:
		event = logger.Info()
	case zerolog.WarnLevel:
		event = logger.Warn()
	case zerolog.ErrorLevel:
		event = logger.Error()
	case zerolog.FatalLevel:
		// WithLevel emits a fatal record without zerolog's own os.Exit,
		// so the pool can be flushed before the process terminates.
		event = logger.WithLevel(zerolog.FatalLevel)
	case zerolog.PanicLevel:
		event = logger.Panic()
	default:
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		return newLogEvent(nil)
	}

	s.mu.RUnlock()

	if level == zerolog.FatalLevel {
		return newTrackedFatalEvent(event, s)
	}
	return newTrackedLogEvent(event, s)
}
