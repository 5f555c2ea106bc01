package command

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger defines the logging interface handed to commands
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// zapLogger adapts zap.Logger to the Logger interface
type zapLogger struct {
	log *zap.Logger
}

// NewZapLogger wraps logger. Arguments are read as alternating keys and values.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapLogger{log: logger}
}

// NopLogger returns a logger that discards everything
func NopLogger() Logger {
	return NewZapLogger(zap.NewNop())
}

func (l *zapLogger) Debug(msg string, args ...interface{}) {
	l.log.Debug(msg, convertToZapFields(args...)...)
}

func (l *zapLogger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, convertToZapFields(args...)...)
}

func (l *zapLogger) Warn(msg string, args ...interface{}) {
	l.log.Warn(msg, convertToZapFields(args...)...)
}

func (l *zapLogger) Error(msg string, args ...interface{}) {
	l.log.Error(msg, convertToZapFields(args...)...)
}

// convertToZapFields converts alternating key/value arguments to zap fields.
// A trailing key without a value is kept under "!BADKEY".
func convertToZapFields(args ...interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fields = append(fields, zap.Any("!BADKEY", args[i]))
			break
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}
