package relay

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Define the logrus log levels
const (
	LogLevelPanic = logrus.PanicLevel
	LogLevelFatal = logrus.FatalLevel
	LogLevelError = logrus.ErrorLevel
	LogLevelWarn  = logrus.WarnLevel
	LogLevelInfo  = logrus.InfoLevel
	LogLevelDebug = logrus.DebugLevel
	LogLevelTrace = logrus.TraceLevel
)

type LogLevel = logrus.Level

// Logger defines the interface this library logs with.
type Logger interface {
	// GetLevel returns the current logging level.
	GetLevel() LogLevel

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultLogger creates the default logger with specified log level (logrus.New()).
func DefaultLogger(level LogLevel) Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	return logger
}

// leveledLogger wraps a Logger for efficiency reasons: it's a static type
// rather than an interface so the compiler can inline the level check
// and thus avoid the allocation for the arguments.
type leveledLogger struct {
	level LogLevel
	Logger
	hooks *Hooks
}

// newLeveledLogger treats the zero level (LogLevelPanic) as unset: the
// level then comes from the given logger, or LogLevelWarn for the default one.
func newLeveledLogger(logger Logger, level LogLevel, hooks *Hooks) *leveledLogger {
	if logger == nil {
		if level == LogLevelPanic {
			level = LogLevelWarn
		}
		logger = DefaultLogger(level)
	}
	if level == LogLevelPanic {
		level = logger.GetLevel()
	}
	return &leveledLogger{
		level:  level,
		Logger: logger,
		hooks:  hooks,
	}
}

func (log *leveledLogger) enabled(level LogLevel) bool {
	return level <= log.level
}

func (log *leveledLogger) Debugf(format string, args ...interface{}) {
	if log.enabled(LogLevelDebug) {
		log.Logger.Debugf(format, args...)
	}
}

func (log *leveledLogger) Infof(format string, args ...interface{}) {
	if log.enabled(LogLevelInfo) {
		log.Logger.Infof(format, args...)
	}
}

func (log *leveledLogger) Warnf(format string, args ...interface{}) {
	if log.enabled(LogLevelWarn) {
		log.Logger.Warnf(format, args...)
	}
}

// Errorf logs at error level and also reports the error to Hooks.OnError.
func (log *leveledLogger) Errorf(format string, args ...interface{}) {
	if log.enabled(LogLevelError) {
		log.Logger.Errorf(format, args...)
	}
	if log.hooks != nil && log.hooks.OnError != nil {
		go log.hooks.OnError(fmt.Errorf(format, args...))
	}
}
