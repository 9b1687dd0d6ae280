package langboard

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/langboard/langboard/schemas"
)

// DefaultLogger implements schemas.Logger on top of zerolog. It is used when
// no logger is provided in the Config.
type DefaultLogger struct {
	logger zerolog.Logger
}

// NewDefaultLogger creates a logger at the given level. The pretty output
// style writes human-readable console lines; everything else emits JSON.
func NewDefaultLogger(level schemas.LogLevel, output schemas.LoggerOutputType) *DefaultLogger {
	var zl zerolog.Logger
	if output == schemas.LoggerOutputTypePretty {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		zl = zerolog.New(os.Stdout)
	}
	zl = zl.With().Timestamp().Logger().Level(toZerologLevel(level))
	return &DefaultLogger{logger: zl}
}

func toZerologLevel(level schemas.LogLevel) zerolog.Level {
	switch level {
	case schemas.LogLevelDebug:
		return zerolog.DebugLevel
	case schemas.LogLevelWarn:
		return zerolog.WarnLevel
	case schemas.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug level message.
func (l *DefaultLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Msgf(msg, args...)
}

// Info logs an info level message.
func (l *DefaultLogger) Info(msg string, args ...any) {
	l.logger.Info().Msgf(msg, args...)
}

// Warn logs a warning level message.
func (l *DefaultLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Msgf(msg, args...)
}

// Error logs an error level message.
func (l *DefaultLogger) Error(msg string, args ...any) {
	l.logger.Error().Msgf(msg, args...)
}

// Fatal logs the message and exits the process.
func (l *DefaultLogger) Fatal(msg string, args ...any) {
	l.logger.Fatal().Msgf(msg, args...)
}

// SetLevel adjusts the minimum severity that will be emitted.
func (l *DefaultLogger) SetLevel(level schemas.LogLevel) {
	l.logger = l.logger.Level(toZerologLevel(level))
}
