// Package logging provides the leveled logger used throughout netcas-splitter.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// DebugLevel is for debug messages
	DebugLevel LogLevel = iota
	// InfoLevel is for informational messages
	InfoLevel
	// WarnLevel is for warning messages
	WarnLevel
	// ErrorLevel is for error messages
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toZerologLevel converts a LogLevel to the zerolog level it corresponds to.
func toZerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger wraps a zerolog core behind the splitter's leveled logging API.
// Splitter.SetDebug(level) maps directly onto SetLevel here.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	zl     zerolog.Logger
	output io.Writer
}

var defaultLogger *Logger
var once sync.Once

func init() {
	defaultLogger = NewLogger(os.Stdout, InfoLevel)
}

// NewLogger creates a new Logger writing to out with the given minimum level.
func NewLogger(out io.Writer, level LogLevel) *Logger {
	zl := zerolog.New(out).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &Logger{
		level:  level,
		zl:     zl,
		output: out,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(toZerologLevel(level))
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput redirects the logger's output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.zl = l.zl.Output(w)
}

func (l *Logger) event(level LogLevel) *zerolog.Event {
	switch level {
	case DebugLevel:
		return l.zl.Debug()
	case WarnLevel:
		return l.zl.Warn()
	case ErrorLevel:
		return l.zl.Error()
	default:
		return l.zl.Info()
	}
}

// Logf emits a printf-style record at the given level, matching the
// "logging sink accepting printf-style records" capability the splitter
// requires of its host.
func (l *Logger) Logf(level LogLevel, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.event(level).Msgf(format, v...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, v ...interface{}) { l.Logf(DebugLevel, format, v...) }

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) { l.Logf(InfoLevel, format, v...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) { l.Logf(WarnLevel, format, v...) }

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) { l.Logf(ErrorLevel, format, v...) }

// Fatal logs an error message and exits the process.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.Logf(ErrorLevel, format, v...)
	os.Exit(1)
}

// Default returns the package-level default logger.
func Default() *Logger {
	once.Do(func() {
		if defaultLogger == nil {
			defaultLogger = NewLogger(os.Stdout, InfoLevel)
		}
	})
	return defaultLogger
}

// SetLevel sets the minimum log level on the default logger.
func SetLevel(level LogLevel) { Default().SetLevel(level) }

// Debug logs a debug message on the default logger.
func Debug(format string, v ...interface{}) { Default().Debug(format, v...) }

// Info logs an informational message on the default logger.
func Info(format string, v ...interface{}) { Default().Info(format, v...) }

// Warn logs a warning message on the default logger.
func Warn(format string, v ...interface{}) { Default().Warn(format, v...) }

// Error logs an error message on the default logger.
func Error(format string, v ...interface{}) { Default().Error(format, v...) }
