package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/reqkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the calling service.
	ServiceName string
	// ServiceVersion is the version of the calling service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns the reqkit meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the dispatch instruments.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	dispatchActive   metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates dispatch instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("reqkit.dispatch.total",
		metric.WithDescription("Total number of settled dispatches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reqkit.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("reqkit.dispatch.duration",
		metric.WithDescription("Time from dispatch to settlement in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reqkit.dispatch.duration histogram: %w", err)
	}

	dispatchActive, err := meter.Int64UpDownCounter("reqkit.dispatch.active",
		metric.WithDescription("Number of dispatches awaiting their adapter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reqkit.dispatch.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("reqkit.dispatch.errors",
		metric.WithDescription("Failed dispatches by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reqkit.dispatch.errors counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		dispatchActive:   dispatchActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordDispatchStart increments the active dispatch count.
func (m *Metrics) RecordDispatchStart(ctx context.Context, client string) {
	m.dispatchActive.Add(ctx, 1, metric.WithAttributes(attribute.String("client", client)))
}

// RecordDispatchEnd decrements active dispatches and records the settled one.
func (m *Metrics) RecordDispatchEnd(ctx context.Context, client, method, outcome string, duration time.Duration) {
	m.dispatchActive.Add(ctx, -1, metric.WithAttributes(attribute.String("client", client)))
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client", client),
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("client", client),
		attribute.String("method", method),
	))
}

// RecordError records a failed dispatch by error code.
func (m *Metrics) RecordError(ctx context.Context, client, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client", client),
		attribute.String("code", code),
	))
}
