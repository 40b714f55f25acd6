package logging

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger routes library logs into a host application's zap logger.
type ZapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger wraps base. A nil base falls back to zap.NewNop.
func NewZapLogger(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{
		base:  base,
		level: zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func toZapFields(fields []Fields) []zap.Field {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	if n == 0 {
		return nil
	}

	out := make([]zap.Field, 0, n)
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}

func (z *ZapLogger) enabled(l zapcore.Level) bool {
	return z.level.Enabled(l)
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	if z.enabled(zapcore.DebugLevel) {
		z.base.Debug(msg, toZapFields(fields)...)
	}
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	if z.enabled(zapcore.InfoLevel) {
		z.base.Info(msg, toZapFields(fields)...)
	}
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	if z.enabled(zapcore.WarnLevel) {
		z.base.Warn(msg, toZapFields(fields)...)
	}
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	if z.enabled(zapcore.ErrorLevel) {
		z.base.Error(msg, append(toZapFields(fields), zap.Error(err))...)
	}
}

// Fatal logs through zap's Fatal, which runs the logger's fatal hook
// (os.Exit(1) unless the host configured zap.WithFatalHook).
func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.base.Fatal(msg, append(toZapFields(fields), zap.Error(err))...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{
		base:  z.base.With(toZapFields([]Fields{fields})...),
		level: z.level,
	}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZapLogger) SetLevel(level Level) {
	switch level {
	case DebugLevel:
		z.level.SetLevel(zapcore.DebugLevel)
	case InfoLevel:
		z.level.SetLevel(zapcore.InfoLevel)
	case WarnLevel:
		z.level.SetLevel(zapcore.WarnLevel)
	default:
		z.level.SetLevel(zapcore.ErrorLevel)
	}
}
