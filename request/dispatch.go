package request

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/errors"
	"github.com/kbukum/reqkit/internal/future"
	"github.com/kbukum/reqkit/logger"
	"github.com/kbukum/reqkit/observability"
)

// Dispatcher runs configurations through normalization, the adapter and the
// response pipeline. A Dispatcher is safe for concurrent use.
type Dispatcher struct {
	name    string
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewDispatcher creates a Dispatcher. Without WithLogger it logs through
// the logger registered for its client name.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{name: "reqkit"}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Get(d.name)
	}
	return d
}

// Dispatch is DispatchContext with a background context.
func (d *Dispatcher) Dispatch(cfg *Config) (*Promise, error) {
	return d.DispatchContext(context.Background(), cfg)
}

// DispatchContext normalizes cfg in place and hands it to its adapter.
// ctx parents the dispatch span; it does not cancel the request.
//
// A token that already fired returns its *cancel.Cancel. An invalid
// configuration returns an error matching ErrInvalidConfig (code
// INVALID_CONFIG or MISSING_FIELD), and a failing header hook or request
// transformer returns TRANSFORM_FAILED. In these cases the adapter is never
// invoked. Everything else is reported
// through the returned Promise.
func (d *Dispatcher) DispatchContext(ctx context.Context, cfg *Config) (*Promise, error) {
	if cfg == nil {
		return nil, errors.InvalidConfig("config is required")
	}
	if cfg.RequestID == "" {
		cfg.RequestID = uuid.NewString()
	}

	if err := checkCanceled(cfg); err != nil {
		d.log.Info("dispatch canceled before start", d.fields(cfg, logger.FieldError, err.Error()))
		return nil, err
	}
	if err := normalize(cfg); err != nil {
		d.log.Warn("dispatch rejected", d.fields(cfg, logger.FieldError, err.Error(), logger.FieldCode, string(errors.CodeOf(err))))
		return nil, err
	}

	oc := observability.NewOperationContext(d.name, string(cfg.Method), cfg.URL, cfg.RequestID, d.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, observability.SpanDispatch)
	otel.GetTextMapPropagator().Inject(ctx, cfg.Headers)
	d.log.Debug("dispatch started", d.fields(cfg))

	settled := future.Then(invoke(cfg),
		func(resp *Response) (*Response, error) {
			if err := checkCanceled(cfg); err != nil {
				return nil, err
			}
			data, err := transformData(stageResponse, resp.Data, resp.Headers, cfg.TransformResponse)
			if err != nil {
				return nil, err
			}
			resp.Data = data
			return resp, nil
		},
		func(err error) (*Response, error) {
			if cancel.IsCancel(err) {
				return nil, err
			}
			if cerr := checkCanceled(cfg); cerr != nil {
				return nil, cerr
			}
			var re *ResponseError
			if stderrors.As(err, &re) {
				data, terr := transformData(stageResponse, re.Data, re.Headers, cfg.TransformResponse)
				if terr != nil {
					return nil, terr.(*errors.AppError).WithDetail("response_error", re)
				}
				re.Data = data
			}
			return nil, err
		},
	)
	settled.OnSettle(func(resp *Response, err error) {
		d.finish(ctx, span, cfg, resp, err)
	})

	return &Promise{fut: settled, config: cfg}, nil
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, cfg *Config, resp *Response, err error) {
	oc := observability.OperationContextFromContext(ctx)
	duration := oc.Duration().Milliseconds()

	if err == nil {
		oc.EndOperation(ctx, span, observability.OutcomeOK, resp.Status, "", nil)
		d.log.Debug("dispatch succeeded", d.fields(cfg, logger.FieldStatus, resp.Status, logger.FieldDuration, duration))
		return
	}

	if cancel.IsCancel(err) {
		oc.EndOperation(ctx, span, observability.OutcomeCanceled, 0, string(errors.ErrCodeCanceled), err)
		d.log.Info("dispatch canceled", d.fields(cfg, logger.FieldError, err.Error(), logger.FieldDuration, duration))
		return
	}

	status := 0
	var code errors.ErrorCode
	var re *ResponseError
	if stderrors.As(err, &re) {
		status, code = re.Status, re.Code
	} else {
		code = errors.CodeOf(err)
	}
	oc.EndOperation(ctx, span, observability.OutcomeError, status, string(code), err)
	d.log.Warn("dispatch failed", d.fields(cfg,
		logger.FieldStatus, status,
		logger.FieldCode, string(code),
		logger.FieldError, err.Error(),
		logger.FieldDuration, duration,
	))
}

func (d *Dispatcher) fields(cfg *Config, kvs ...interface{}) map[string]interface{} {
	f := logger.RequestFields(cfg.RequestID, string(cfg.Method), cfg.URL)
	for k, v := range logger.Fields(kvs...) {
		f[k] = v
	}
	f["client"] = d.name
	return f
}
