// Package logging provides the project-wide structured logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls the minimum severity that gets logged.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is a single structured log attribute.
type Field struct {
	key    string
	value  interface{}
	fields map[string]interface{}
}

// WithField creates a single key/value log field.
func WithField(key string, value interface{}) Field {
	return Field{key: key, value: value}
}

// WithFields creates a log field carrying multiple key/value pairs.
func WithFields(fields map[string]interface{}) Field {
	return Field{fields: fields}
}

// Logger is a leveled structured logger.
type Logger struct {
	z *zap.Logger
}

// New creates a logger writing to stderr at the given level.
func New(level Level) *Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case LevelDebug:
		zapLevel = zapcore.DebugLevel
	case LevelWarn:
		zapLevel = zapcore.WarnLevel
	case LevelError:
		zapLevel = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// The static config above cannot fail; fall back to a no-op logger
		// rather than panicking during startup.
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, zapFields(fields)...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.z.Info(msg, zapFields(fields)...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, zapFields(fields)...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.z.Error(msg, zapFields(fields)...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if f.fields != nil {
			for k, v := range f.fields {
				out = append(out, zap.Any(k, v))
			}
			continue
		}
		out = append(out, zap.Any(f.key, f.value))
	}
	return out
}
