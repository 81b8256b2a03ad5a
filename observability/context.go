package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// OperationContext holds observability state for one dispatch.
type OperationContext struct {
	ClientName string
	Method     string
	URL        string
	RequestID  string
	StartTime  time.Time
	Metrics    *Metrics
}

// NewOperationContext creates a new operation context.
// If metrics is nil, metric recording is silently skipped.
func NewOperationContext(clientName, method, url, requestID string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		ClientName: clientName,
		Method:     method,
		URL:        url,
		RequestID:  requestID,
		StartTime:  time.Now(),
		Metrics:    metrics,
	}
}

// operationContextKey is the context key for OperationContext.
type operationContextKey struct{}

// WithOperationContext stores an OperationContext in the context.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext retrieves the OperationContext from context, or nil.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	if oc, ok := ctx.Value(operationContextKey{}).(*OperationContext); ok {
		return oc
	}
	return nil
}

// StartSpanForOperation starts a client span and records the dispatch start metric.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrClientName, oc.ClientName),
		attribute.String(AttrMethod, oc.Method),
		attribute.String(AttrURL, oc.URL),
		attribute.String(AttrRequestID, oc.RequestID),
	)

	if oc.Metrics != nil {
		oc.Metrics.RecordDispatchStart(ctx, oc.ClientName)
	}
	return WithOperationContext(ctx, oc), span
}

// EndOperation ends the span and records dispatch-end metrics.
// status is the response status, or 0 when none was produced.
// errCode is recorded for failed dispatches only.
func (oc *OperationContext) EndOperation(ctx context.Context, span trace.Span, outcome string, status int, errCode string, err error) {
	duration := oc.Duration()

	if status > 0 {
		span.SetAttributes(attribute.Int(AttrStatusCode, status))
	}
	if err != nil && outcome == OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String(AttrErrorMessage, err.Error()),
			attribute.String(AttrErrorCode, errCode),
		)
	}
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		oc.Metrics.RecordDispatchEnd(ctx, oc.ClientName, oc.Method, outcome, duration)
		if outcome == OutcomeError {
			oc.Metrics.RecordError(ctx, oc.ClientName, errCode)
		}
	}
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
