// Package context 拓展上下文功能，把请求级 logger 与追踪信息放进 context，方便在服务各层传递.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	nlog "github.com/yeisme/audiovault/pkg/log"
)

type ContextKey string

const (
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
)

// WithLogger 将 logger 存储到 context 中.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// Logger 从 context 中取 logger，没有则使用全局 logger，并附加追踪 id.
func Logger(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(LoggerKey).(zerolog.Logger)
	if !ok {
		logger = *nlog.Logger()
	}

	return WithTraceContext(ctx, logger)
}

// WithRequestID 记录请求 id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID 返回请求 id，没有时为空串.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// TraceID 返回当前 span 的 trace id，没有有效 span 时为空串.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}

	return sc.TraceID().String()
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
