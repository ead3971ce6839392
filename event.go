package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext builds a context logger with pre-populated fields. Fields added
// through LogContext are included in every message the resulting logger
// emits.
type LogContext interface {
	Str(key, val string) LogContext
	Strs(key string, vals []string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Float64(key string, val float64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent is a fluent builder for one structured log entry. All methods are
// safe on a disabled event; Msg, Msgf or Send completes the entry.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Bytes(key string, val []byte) LogEvent
	Interface(key string, val interface{}) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent
	Int32(key string, val int32) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent over zerolog.Event. A nil event is a no-op.
type logEvent struct {
	event *zerolog.Event
}

// trackedLogEvent additionally decrements the service's active-operations
// counter when the event completes. Fatal events flush the delivery pool and
// exit the process on completion.
type trackedLogEvent struct {
	logEvent
	service *Service
	fatal   bool
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	if e == nil || s == nil {
		// Release the pending operation so the counter stays balanced.
		if s != nil {
			s.activeOps.Add(-1)
		}
		return &logEvent{event: nil}
	}
	return &trackedLogEvent{
		logEvent: logEvent{event: e},
		service:  s,
	}
}

func newTrackedFatalEvent(e *zerolog.Event, s *Service) LogEvent {
	event := newTrackedLogEvent(e, s)
	if tracked, ok := event.(*trackedLogEvent); ok {
		tracked.fatal = true
	}
	return event
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int32(key string, val int32) LogEvent {
	if e.event != nil {
		e.event.Int32(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	if e.event != nil {
		e.event.Uint64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		if err != nil {
			if chain, root := buildErrorChain(err); len(chain) > 0 {
				e.event.Strs("error_chain", chain)
				e.event.Str("error_root", root)
				e.event.Str("error_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		if err != nil {
			if chain, root := buildErrorChain(err); len(chain) > 0 {
				e.event.Strs(key+"_chain", chain)
				e.event.Str(key+"_root", root)
				e.event.Str(key+"_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	if e.event != nil {
		e.event.Bytes(key, val)
	}
	return e
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

// Dict for nested objects
func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	if e.event != nil {
		dictEvent := zerolog.Dict()
		dict(newLogEvent(dictEvent))
		e.event.Dict(key, dictEvent)
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	if e.event != nil {
		e.event.Send()
	}
}

func (e *trackedLogEvent) Msg(msg string) {
	defer e.release()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *trackedLogEvent) Msgf(format string, v ...interface{}) {
	defer e.release()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *trackedLogEvent) Send() {
	defer e.release()
	if e.event != nil {
		e.event.Send()
	}
}

func (e *trackedLogEvent) release() {
	e.service.activeOps.Add(-1)
	if e.fatal {
		e.service.exitFatal()
	}
}

// logContext implements LogContext over zerolog.Context.
type logContext struct {
	context zerolog.Context
	service *Service
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Strs(key string, vals []string) LogContext {
	c.context = c.context.Strs(key, vals)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Float64(key string, val float64) LogContext {
	c.context = c.context.Float64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	// Delegate resource management to the parent service so child loggers
	// never outlive its sinks.
	return &contextLogger{
		logger: &logger,
		parent: c.service,
	}
}

// contextLogger is a child logger created from a LogContext. It shares the
// parent Service's sinks and in-flight tracking.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

// contextEventBuilder mirrors logEventBuilder for child loggers: same
// tracking, but events come from the child's logger so its pre-populated
// fields are included.
func (cl *contextLogger) contextEventBuilder(level zerolog.Level) LogEvent {
	s := cl.parent
	if s == nil || cl.logger == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)

	s.mu.RLock()

	if !s.isInitialized.Load() || cl.logger.GetLevel() > level {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		return newLogEvent(nil)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.DebugLevel:
		event = cl.logger.Debug()
	case zerolog.InfoLevel:
		event = cl.logger.Info()
	case zerolog.WarnLevel:
		event = cl.logger.Warn()
	case zerolog.ErrorLevel:
		event = cl.logger.Error()
	case zerolog.FatalLevel:
		event = cl.logger.WithLevel(zerolog.FatalLevel)
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

func (cl *contextLogger) InfoWith() LogEvent  { return cl.contextEventBuilder(zerolog.InfoLevel) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.contextEventBuilder(zerolog.WarnLevel) }
func (cl *contextLogger) ErrorWith() LogEvent { return cl.contextEventBuilder(zerolog.ErrorLevel) }
func (cl *contextLogger) DebugWith() LogEvent { return cl.contextEventBuilder(zerolog.DebugLevel) }
func (cl *contextLogger) FatalWith() LogEvent { return cl.contextEventBuilder(zerolog.FatalLevel) }

func (cl *contextLogger) With() LogContext {
	if cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: cl.logger.With(),
		service: cl.parent,
	}
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext             { return n }
func (n *noopLogContext) Strs(key string, vals []string) LogContext  { return n }
func (n *noopLogContext) Int(key string, val int) LogContext         { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext     { return n }
func (n *noopLogContext) Float64(key string, val float64) LogContext { return n }
func (n *noopLogContext) Bool(key string, val bool) LogContext       { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext  { return n }
func (n *noopLogContext) Err(err error) LogContext                   { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext {
	return n
}
func (n *noopLogContext) Logger() Logger { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) InfoWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) FatalWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext    { return &noopLogContext{} }
