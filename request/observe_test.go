package request

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/logger"
	"github.com/kbukum/reqkit/observability"
)

func installTracing(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDispatch_Span(t *testing.T) {
	sr := installTracing(t)
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Status: 204})
	}}
	d := NewDispatcher(WithLogger(logger.Nop()), WithName("inventory"))

	p, err := d.Dispatch(&Config{Adapter: rec.adapter, URL: "/items", Method: MethodGet, RequestID: "req-1"})
	if err != nil {
		t.Fatal(err)
	}
	await(t, p)

	if tp := rec.last(t).Headers.Get("traceparent"); tp == "" {
		t.Error("expected trace context injected into request headers")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != observability.SpanDispatch {
		t.Errorf("unexpected span name %q", span.Name())
	}
	want := map[string]string{
		observability.AttrClientName: "inventory",
		observability.AttrMethod:     "GET",
		observability.AttrURL:        "/items",
		observability.AttrRequestID:  "req-1",
		observability.AttrOutcome:    observability.OutcomeOK,
	}
	for k, v := range want {
		if got, ok := spanAttr(span, k); !ok || got.AsString() != v {
			t.Errorf("attribute %s: expected %q, got %v", k, v, got)
		}
	}
	if got, _ := spanAttr(span, observability.AttrStatusCode); got.AsInt64() != 204 {
		t.Errorf("expected status 204, got %v", got)
	}
}

func TestDispatch_SpanOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		respond func(*AdapterRequest)
		cancel  bool
		outcome string
		status  codes.Code
	}{
		{"failure", func(req *AdapterRequest) { req.Fail(&AdapterResponseError{Status: 502}) }, false, observability.OutcomeError, codes.Error},
		{"canceled", nil, true, observability.OutcomeCanceled, codes.Unset},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sr := installTracing(t)
			src := cancel.NewSource()
			rec := &recorder{respond: tc.respond}

			p, err := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet, CancelToken: src.Token()})
			if err != nil {
				t.Fatal(err)
			}
			if tc.cancel {
				src.Cancel("stop")
			}
			await(t, p)

			spans := sr.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if got, _ := spanAttr(spans[0], observability.AttrOutcome); got.AsString() != tc.outcome {
				t.Errorf("expected outcome %q, got %q", tc.outcome, got.AsString())
			}
			if spans[0].Status().Code != tc.status {
				t.Errorf("expected status %v, got %v", tc.status, spans[0].Status().Code)
			}
		})
	}
}

func TestDispatch_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(WithLogger(logger.Nop()), WithMetrics(metrics), WithName("inventory"))

	ok := &recorder{respond: succeedWith(nil)}
	bad := &recorder{respond: func(req *AdapterRequest) { req.Fail(nil) }}
	for _, rec := range []*recorder{ok, ok, bad} {
		p, err := d.Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
		if err != nil {
			t.Fatal(err)
		}
		await(t, p)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, isSum := m.Data.(metricdata.Sum[int64])
			if !isSum {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	if totals["reqkit.dispatch.total"] != 3 {
		t.Errorf("expected 3 dispatches, got %d", totals["reqkit.dispatch.total"])
	}
	if totals["reqkit.dispatch.errors"] != 1 {
		t.Errorf("expected 1 error, got %d", totals["reqkit.dispatch.errors"])
	}
	if totals["reqkit.dispatch.active"] != 0 {
		t.Errorf("expected no active dispatches, got %d", totals["reqkit.dispatch.active"])
	}
}

func TestDispatcher_RegisteredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.Register("payments", logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf, "test"))
	t.Cleanup(func() { logger.Register("payments", nil) })

	rec := &recorder{respond: succeedWith(nil)}
	p, err := NewDispatcher(WithName("payments")).Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	if err != nil {
		t.Fatal(err)
	}
	await(t, p)

	if !strings.Contains(buf.String(), "dispatch succeeded") {
		t.Errorf("expected dispatch logs in the registered logger, got %q", buf.String())
	}
}
