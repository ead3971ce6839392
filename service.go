package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service owns one configured logger: a console sink that receives every
// record, a rotating file sink optionally gated by FileFilter, and a
// delivery pool of Config.PoolSize workers. Construct it directly with a
// Config or through Setup, then call Initialize before logging.
//
// A Service is an explicit object, not a process-wide registry. Two Services
// configured with different file paths are both live and independent.
type Service struct {
	Config *Config

	// FileFilter gates the file sink. May be set before Initialize; nil
	// accepts every record.
	FileFilter RecordValidator

	// consoleOut overrides the console destination (os.Stderr by default).
	// Tests use it to capture console output.
	consoleOut io.Writer

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	mu            sync.RWMutex
	activeOps     atomic.Int32

	fileWriter *lumberjack.Logger
	pool       *poolWriter
}

// sprintPool is a buffer pool for the plain-string logging methods to reduce
// allocations.
var sprintPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

// osExit is swapped out in tests so fatal paths can be exercised without
// terminating the test binary.
var osExit = os.Exit

// Setup configures and initializes a Service with a console sink, a rotating
// file sink at logfile, and poolSize delivery workers. When model is
// non-nil, the file sink persists only records whose message payload
// conforms to it (see ModelValidator); the console sink always receives
// every record.
func Setup(logfile string, poolSize int, model interface{}) (*Service, error) {
	cfg := DefaultConfig()
	cfg.LogFile = logfile
	cfg.PoolSize = poolSize

	svc := &Service{Config: cfg}
	if model != nil {
		filter, err := ModelValidator(model)
		if err != nil {
			return nil, err
		}
		svc.FileFilter = filter
	}

	if err := svc.Initialize(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Initialize validates the config and builds the sink chain. Calling it on
// an already-initialized Service is a no-op.
func (s *Service) Initialize() error {
	if s == nil {
		return errors.New(errMsgNilService)
	}
	if s.isInitialized.Load() {
		return nil
	}

	if err := validateConfig(s.Config); err != nil {
		return err
	}

	level, err := parseLevel(s.Config.Level)
	if err != nil {
		return fmt.Errorf("setting logging level: %w", err)
	}

	s.pool = newPoolWriter(s.initializeWriters(), s.Config.PoolSize)

	logger := zerolog.New(s.pool).Level(level)
	if s.Config.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if s.Config.SkipFrameCount > 0 {
		logger = logger.With().CallerWithSkipFrameCount(s.Config.SkipFrameCount).Logger()
	}

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

// Close waits for in-flight log operations, flushes the delivery pool and
// closes the file writer. Config.ShutdownTimeoutMS bounds the whole shutdown:
// the pool flush gets whatever remains of the budget after the operations
// wait. A failed flush surfaces in the returned error. It is safe to call
// Close multiple times and on a nil Service.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	if !s.isInitialized.CompareAndSwap(true, false) {
		return nil
	}

	timeout := time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond
	start := time.Now()
	if !s.waitForOperations(timeout) && s.Config.ShutdownTimeoutWarning {
		if logger := s.logger.Load(); logger != nil {
			logger.Warn().
				Int32("active_operations", s.activeOps.Load()).
				Msg("Logger shutdown timeout exceeded")
		}
	}

	flushTimeout := timeout
	if timeout > 0 {
		flushTimeout = timeout - time.Since(start)
		if flushTimeout < minFlushTimeout {
			flushTimeout = minFlushTimeout
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var flushErr error
	if s.pool != nil {
		flushErr = s.pool.Close(flushTimeout)
		s.pool = nil
	}

	var closeErr error
	if s.fileWriter != nil {
		closeErr = s.fileWriter.Close()
		s.fileWriter = nil
	}

	s.logger.Store(nil)
	return errors.Join(flushErr, closeErr)
}

// waitForOperations blocks until all tracked log operations finish or the
// timeout expires. The counter is polled rather than waited on so an
// orphaned event cannot leak a goroutine past Close. A zero timeout waits
// indefinitely.
func (s *Service) waitForOperations(timeout time.Duration) bool {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for s.activeOps.Load() > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return false
		}
		time.Sleep(opPollInterval)
	}
	return true
}

// exitFatal drains the delivery pool so a fatal record reaches the sinks
// before the process exits.
func (s *Service) exitFatal() {
	timeout := time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond

	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool != nil {
		_ = pool.Close(timeout)
	}
	osExit(1)
}

// ActiveOperations reports the number of log operations currently in flight.
func (s *Service) ActiveOperations() int32 {
	if s == nil {
		return 0
	}
	return s.activeOps.Load()
}

// Hook installs zerolog hooks on the logger.
func (s *Service) Hook(hooks ...zerolog.Hook) {
	if s == nil || !s.isInitialized.Load() {
		return
	}

	for {
		oldLogger := s.logger.Load()
		if oldLogger == nil {
			return
		}

		newLogger := oldLogger.Hook(hooks...)
		if s.logger.CompareAndSwap(oldLogger, &newLogger) {
			break
		}
	}
}

// Plain-string logging. These carry unstructured records: with a FileFilter
// set they reach the console only, since a plain string never conforms to a
// record model.

func (s *Service) Info(fields ...interface{}) {
	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	logEventBuilder(s, zerolog.InfoLevel).Msg(buf.String())
}

func (s *Service) Infof(format string, fields ...interface{}) {
	logEventBuilder(s, zerolog.InfoLevel).Msgf(format, fields...)
}

func (s *Service) Debug(fields ...interface{}) {
	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	logEventBuilder(s, zerolog.DebugLevel).Msg(buf.String())
}

func (s *Service) Debugf(format string, fields ...interface{}) {
	logEventBuilder(s, zerolog.DebugLevel).Msgf(format, fields...)
}

func (s *Service) Warn(fields ...interface{}) {
	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	logEventBuilder(s, zerolog.WarnLevel).Msg(buf.String())
}

func (s *Service) Warnf(format string, fields ...interface{}) {
	logEventBuilder(s, zerolog.WarnLevel).Msgf(format, fields...)
}

func (s *Service) Error(fields ...interface{}) {
	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	logEventBuilder(s, zerolog.ErrorLevel).Msg(buf.String())
}

func (s *Service) Errorf(format string, fields ...interface{}) {
	logEventBuilder(s, zerolog.ErrorLevel).Msgf(format, fields...)
}

// Fatal logs a plain-string record at fatal level, flushes the delivery
// pool and exits the process.
func (s *Service) Fatal(fields ...interface{}) {
	if s == nil || !s.isInitialized.Load() {
		_, _ = fmt.Fprintln(os.Stderr, "FATAL:", fmt.Sprint(fields...))
		osExit(1)
		return
	}

	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	logEventBuilder(s, zerolog.FatalLevel).Msg(buf.String())
}

// Structured logging

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: svc.InfoWith().Str("user_id", id).Int("count", 5).Msg("processed")
func (s *Service) InfoWith() LogEvent {
	return logEventBuilder(s, zerolog.InfoLevel)
}

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent {
	return logEventBuilder(s, zerolog.WarnLevel)
}

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: svc.ErrorWith().Err(err).Str("operation", "flush").Msg("failed")
func (s *Service) ErrorWith() LogEvent {
	return logEventBuilder(s, zerolog.ErrorLevel)
}

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent {
	return logEventBuilder(s, zerolog.DebugLevel)
}

// FatalWith returns a LogEvent for structured Fatal-level logging.
// Completing the event with Msg, Msgf or Send flushes the delivery pool so
// the record reaches the sinks, then exits the program.
func (s *Service) FatalWith() LogEvent {
	return logEventBuilder(s, zerolog.FatalLevel)
}

// With returns a LogContext for creating a child logger with pre-populated
// fields.
// Example: reqLogger := svc.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	logger := s.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}
