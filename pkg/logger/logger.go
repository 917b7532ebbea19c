// ==============================================================================
// LOGGER PACKAGE - pkg/logger/logger.go
// ==============================================================================
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

type jsonLogger struct {
	logger zerolog.Logger
}

// New returns a JSON line logger on stdout at info level.
func New(serviceName string) Logger {
	return NewWithWriter(serviceName, os.Stdout, "info")
}

// NewWithLevel returns a JSON line logger on stdout filtered at the named level.
// Unknown level names fall back to info.
func NewWithLevel(serviceName, level string) Logger {
	return NewWithWriter(serviceName, os.Stdout, level)
}

func NewWithWriter(serviceName string, w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &jsonLogger{
		logger: zerolog.New(w).Level(lvl).With().Timestamp().Str("service", serviceName).Logger(),
	}
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(message)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(message)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(message)
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(message)
}

// Fatal logs and exits the process with status 1.
func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	l.logger.Fatal().Fields(fields).Msg(message)
}

func NewNop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (l *nopLogger) Info(message string, fields map[string]interface{})  {}
func (l *nopLogger) Error(message string, fields map[string]interface{}) {}
func (l *nopLogger) Warn(message string, fields map[string]interface{})  {}
func (l *nopLogger) Debug(message string, fields map[string]interface{}) {}
func (l *nopLogger) Fatal(message string, fields map[string]interface{}) {}
