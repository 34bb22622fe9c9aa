package logger

import (
	"context"
	"time"

	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogger enriches log entries with the request metadata carried in a
// context (request id, client ip, user id, module, function).
type ContextLogger struct {
	base   *zap.Logger
	logger *zap.Logger
}

func NewContextLogger(l *zap.Logger) *ContextLogger {
	if l == nil {
		l = zap.NewNop()
	}
	// Entries are written from LogBuilder.Log; skip it so callers are reported.
	return &ContextLogger{base: l, logger: l.WithOptions(zap.AddCallerSkip(1))}
}

// Zap exposes the underlying logger for packages that log without a context.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.base
}

func (cl *ContextLogger) Debug(ctx context.Context, message string) *LogBuilder {
	return cl.entry(ctx, zapcore.DebugLevel, message)
}

func (cl *ContextLogger) Info(ctx context.Context, message string) *LogBuilder {
	return cl.entry(ctx, zapcore.InfoLevel, message)
}

func (cl *ContextLogger) Warn(ctx context.Context, message string) *LogBuilder {
	return cl.entry(ctx, zapcore.WarnLevel, message)
}

func (cl *ContextLogger) Error(ctx context.Context, message string) *LogBuilder {
	return cl.entry(ctx, zapcore.ErrorLevel, message)
}

func (cl *ContextLogger) entry(ctx context.Context, level zapcore.Level, message string) *LogBuilder {
	b := &LogBuilder{
		logger:  cl.logger,
		level:   level,
		message: message,
		enabled: cl.logger.Core().Enabled(level),
	}
	if b.enabled {
		b.fields = make([]zap.Field, 0, 10)
		b.extractContextFields(ctx)
	}
	return b
}

// LogBuilder accumulates fields for a single entry; nothing is written until Log.
type LogBuilder struct {
	logger  *zap.Logger
	level   zapcore.Level
	message string
	fields  []zap.Field
	enabled bool
}

func (b *LogBuilder) extractContextFields(ctx context.Context) {
	if ctx == nil {
		return
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		b.fields = append(b.fields, zap.String("request_id", requestID))
	}
	if clientIP := ctxutil.GetClientIP(ctx); clientIP != "" {
		b.fields = append(b.fields, zap.String("client_ip", clientIP))
	}
	if userID := ctxutil.GetUserID(ctx); userID != "" {
		b.fields = append(b.fields, zap.String("auth_user_id", userID))
	}
	if module := ctxutil.GetModule(ctx); module != "" {
		b.fields = append(b.fields, zap.String("module", module))
	}
	if function := ctxutil.GetFunction(ctx); function != "" {
		b.fields = append(b.fields, zap.String("function", function))
	}
}

func (b *LogBuilder) String(key, value string) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.String(key, value))
	}
	return b
}

func (b *LogBuilder) Int(key string, value int) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Int(key, value))
	}
	return b
}

func (b *LogBuilder) Int64(key string, value int64) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Int64(key, value))
	}
	return b
}

func (b *LogBuilder) Bool(key string, value bool) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Bool(key, value))
	}
	return b
}

func (b *LogBuilder) Duration(value time.Duration) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Duration("duration", value))
	}
	return b
}

func (b *LogBuilder) Err(err error) *LogBuilder {
	if b.enabled && err != nil {
		b.fields = append(b.fields, zap.Error(err))
	}
	return b
}

func (b *LogBuilder) Any(key string, value any) *LogBuilder {
	if b.enabled {
		b.fields = append(b.fields, zap.Any(key, value))
	}
	return b
}

func (b *LogBuilder) Log() {
	if !b.enabled {
		return
	}
	if ce := b.logger.Check(b.level, b.message); ce != nil {
		ce.Write(b.fields...)
	}
}
