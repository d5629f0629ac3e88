package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	tenantIDKey
	userIDKey
)

// WithContext attaches log to ctx.
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the attached logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithRequestID tags ctx and its logger with the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return tag(ctx, requestIDKey, "request_id", requestID)
}

// WithTenantID tags ctx and its logger with the tenant id.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return tag(ctx, tenantIDKey, "tenant_id", tenantID)
}

// WithUserID tags ctx and its logger with the caller id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return tag(ctx, userIDKey, "user_id", userID)
}

func tag(ctx context.Context, key ctxKey, field, value string) context.Context {
	if value == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, FromContext(ctx).With(zap.String(field, value)))
}

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetRequestID returns the request id tagged on ctx.
func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// GetTenantID returns the tenant id tagged on ctx.
func GetTenantID(ctx context.Context) string { return stringValue(ctx, tenantIDKey) }

// GetUserID returns the caller id tagged on ctx.
func GetUserID(ctx context.Context) string { return stringValue(ctx, userIDKey) }

// L returns the context logger with the active span's trace and span ids.
//
//	logger.L(ctx).Info("shift submitted", zap.String("date", date))
func L(ctx context.Context) *zap.Logger {
	log := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
