package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type runContextKey struct{}

type RunMeta struct {
	RunID   string
	TraceID string
	SpanID  string
}

func (m RunMeta) IsZero() bool {
	return m.RunID == "" && m.TraceID == "" && m.SpanID == ""
}

func WithRunMeta(ctx context.Context, meta RunMeta) context.Context {
	if meta.IsZero() {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runContextKey{}, meta)
}

func RunMetaFromContext(ctx context.Context) (RunMeta, bool) {
	if ctx == nil {
		return RunMeta{}, false
	}
	meta, ok := ctx.Value(runContextKey{}).(RunMeta)
	return meta, ok && !meta.IsZero()
}

func NewRunID() string {
	return uuid.NewString()
}

// EnsureRunMeta attaches a run id, and the active span when there is one.
func EnsureRunMeta(ctx context.Context) (context.Context, RunMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	meta, _ := RunMetaFromContext(ctx)
	if meta.RunID == "" {
		meta.RunID = NewRunID()
	}
	if meta.TraceID == "" {
		meta.TraceID, meta.SpanID = TraceSpanFromContext(ctx)
	}
	return context.WithValue(ctx, runContextKey{}, meta), meta
}

func TraceSpanFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}

func RunFields(meta RunMeta) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if meta.RunID != "" {
		fields = append(fields, RunIDField(meta.RunID))
	}
	if meta.TraceID != "" {
		fields = append(fields, TraceIDField(meta.TraceID))
	}
	if meta.SpanID != "" {
		fields = append(fields, SpanIDField(meta.SpanID))
	}
	return fields
}
