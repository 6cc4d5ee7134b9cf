package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with the handful of methods the services use.
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger for the given environment. Development and test get
// pretty console output at debug level; anything else gets JSON at info
// level, suitable for log collectors.
func New(env string) *Logger {
	var w io.Writer = os.Stdout
	level := zerolog.InfoLevel

	if env == "development" || env == "test" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if env == "development" {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{zl: zl}
}

// Level returns a copy of the logger with the named minimum level (debug,
// info, warn, error). Unknown names keep the current level.
func (l *Logger) Level(level string) *Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return l
	}
	return &Logger{zl: l.zl.Level(parsed)}
}

// Output returns a copy of the logger writing to w.
func (l *Logger) Output(w io.Writer) *Logger {
	return &Logger{zl: l.zl.Output(w)}
}

// Component returns a copy of the logger tagged with a component name, so
// every line from one subsystem can be filtered together.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// With returns a copy of the logger with one extra context field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithFields returns a copy of the logger with several extra context fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zl.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zl: ctx.Logger()}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error logs an error with its message
func (l *Logger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(err error, format string, v ...interface{}) {
	l.zl.Error().Err(err).Msgf(format, v...)
}

// Fatal logs an error and exits
func (l *Logger) Fatal(msg string, err error) {
	l.zl.Fatal().Err(err).Msg(msg)
}

// Fatalf logs a formatted error and exits
func (l *Logger) Fatalf(err error, format string, v ...interface{}) {
	l.zl.Fatal().Err(err).Msgf(format, v...)
}

// Zerolog exposes the underlying zerolog.Logger for libraries that expect one.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// SetGlobalLogger routes zerolog's package-level logger through l.
func SetGlobalLogger(l *Logger) {
	log.Logger = l.zl
}
