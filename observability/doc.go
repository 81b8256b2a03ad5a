// Package observability provides OpenTelemetry tracing and metrics for
// request dispatch.
//
// Without initialization the global no-op providers are used, so spans and
// instruments cost nothing until an application opts in.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("checkout"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("checkout"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//	client := request.New(defaults, request.WithMetrics(metrics))
//
// Each dispatch runs inside an OperationContext that opens a
// "reqkit.dispatch" client span and records reqkit.dispatch.* instruments.
package observability
