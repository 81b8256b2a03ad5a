package request

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/errors"
	"github.com/kbukum/reqkit/logger"
)

func TestDispatch_ContractViolations(t *testing.T) {
	rec := &recorder{respond: succeedWith(nil)}

	tests := []struct {
		name  string
		cfg   *Config
		field string
		code  errors.ErrorCode
	}{
		{"nil config", nil, "", errors.ErrCodeInvalidConfig},
		{"missing adapter", &Config{URL: "/x", Method: MethodGet}, "adapter", errors.ErrCodeMissingField},
		{"missing url", &Config{Adapter: rec.adapter, Method: MethodGet}, "url", errors.ErrCodeMissingField},
		{"blank url", &Config{Adapter: rec.adapter, URL: "  ", Method: MethodGet}, "url", errors.ErrCodeMissingField},
		{"missing method", &Config{Adapter: rec.adapter, URL: "/x"}, "method", errors.ErrCodeMissingField},
		{"unknown method", &Config{Adapter: rec.adapter, URL: "/x", Method: "BREW"}, "method", errors.ErrCodeInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := newTestDispatcher().Dispatch(tc.cfg)
			if p != nil {
				t.Error("expected no promise for an invalid config")
			}
			if !stderrors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected an INVALID_CONFIG match, got %v", err)
			}
			if got := errors.CodeOf(err); got != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, got)
			}
			if tc.field != "" && !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to name %q, got %q", tc.field, err.Error())
			}
		})
	}
	if rec.count() != 0 {
		t.Errorf("adapter must not be invoked for invalid configs, got %d calls", rec.count())
	}
}

func TestDispatch_MethodIsCaseInsensitive(t *testing.T) {
	rec := &recorder{respond: succeedWith(nil)}
	p, err := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: "pUt", Data: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := await(t, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := rec.last(t)
	if req.Method != MethodPut {
		t.Errorf("expected PUT, got %s", req.Method)
	}
	if req.Data != "body" {
		t.Errorf("expected PUT to keep its body, got %v", req.Data)
	}
}

func TestDispatch_SuccessIdentity(t *testing.T) {
	body := map[string]any{"id": 1, "tags": []any{"a"}}
	rec := &recorder{respond: succeedWith(body)}

	p, err := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := await(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Data, body) {
		t.Errorf("expected raw body, got %v", resp.Data)
	}
	if resp.Status != 200 || resp.StatusText != "OK" {
		t.Errorf("expected 200 OK, got %d %q", resp.Status, resp.StatusText)
	}
	if resp.Headers == nil {
		t.Error("expected non-nil default headers")
	}
	if resp.Config != p.Config() {
		t.Error("expected response to reference the dispatched config")
	}
}

func TestDispatch_SuccessKeepsAdapterFields(t *testing.T) {
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Status: 201, StatusText: "Created", Headers: Header{"Location": "/x/1"}})
	}}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodPost})
	resp, err := await(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 201 || resp.StatusText != "Created" || resp.Headers.Get("location") != "/x/1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestDispatch_FailDefaults(t *testing.T) {
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Fail(&AdapterResponseError{})
	}}
	p, err := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = await(t, p)

	var re *ResponseError
	if !stderrors.As(err, &re) {
		t.Fatalf("expected *ResponseError, got %T %v", err, err)
	}
	if re.Status != 400 || re.StatusText != "Fail Adapter" || !re.IsFail {
		t.Errorf("expected 400 Fail Adapter isFail, got %d %q %v", re.Status, re.StatusText, re.IsFail)
	}
	if re.Message != "request fail" {
		t.Errorf("expected message 'request fail', got %q", re.Message)
	}
	if !stderrors.Is(err, ErrRequestFailed) {
		t.Error("expected error to match ErrRequestFailed")
	}
	if !re.Retryable() {
		t.Error("expected transport failures to be retryable")
	}
	if re.Headers == nil || re.Config == nil {
		t.Error("expected headers and config to be attached")
	}
}

func TestDispatch_NilAdapterPayloads(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := &recorder{respond: func(req *AdapterRequest) { req.Success(nil) }}
		p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
		resp, err := await(t, p)
		if err != nil || resp.Status != 200 {
			t.Errorf("expected defaulted 200, got %v %v", resp, err)
		}
	})
	t.Run("fail", func(t *testing.T) {
		rec := &recorder{respond: func(req *AdapterRequest) { req.Fail(nil) }}
		p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
		_, err := await(t, p)
		var re *ResponseError
		if !stderrors.As(err, &re) || re.Status != 400 {
			t.Errorf("expected defaulted 400, got %v", err)
		}
	})
}

func TestDispatch_ValidateStatusFail(t *testing.T) {
	var seen []any
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Status: 404, StatusText: "Not Found", Data: "missing"})
	}}
	p, _ := newTestDispatcher().Dispatch(&Config{
		Adapter:        rec.adapter,
		URL:            "/x",
		Method:         MethodGet,
		ValidateStatus: StatusRange(200, 299),
		TransformResponse: []Transformer{func(data any, _ Header) (any, error) {
			seen = append(seen, data)
			return "decoded:" + data.(string), nil
		}},
	})
	_, err := await(t, p)

	var re *ResponseError
	if !stderrors.As(err, &re) {
		t.Fatalf("expected *ResponseError, got %v", err)
	}
	if re.Message != "validate status fail" {
		t.Errorf("expected 'validate status fail', got %q", re.Message)
	}
	if re.IsFail {
		t.Error("status validation failures must not be marked isFail")
	}
	if re.Status != 404 || re.StatusText != "Not Found" {
		t.Errorf("expected adapter status kept, got %d %q", re.Status, re.StatusText)
	}
	if !stderrors.Is(err, ErrValidateStatus) {
		t.Error("expected error to match ErrValidateStatus")
	}
	if re.Data != "decoded:missing" || len(seen) != 1 {
		t.Errorf("expected response transformers to run on the error body, got %v", re.Data)
	}
}

func TestDispatch_NilValidatorAcceptsEverything(t *testing.T) {
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Status: 500})
	}}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	resp, err := await(t, p)
	if err != nil || resp.Status != 500 {
		t.Errorf("expected 500 to be accepted without a validator, got %v %v", resp, err)
	}
}

func TestDispatch_PanickingAdapter(t *testing.T) {
	adapter := func(*AdapterRequest) (Task, error) {
		panic("boom")
	}
	p, err := newTestDispatcher().Dispatch(&Config{Adapter: adapter, URL: "/x", Method: MethodGet})
	if err != nil {
		t.Fatalf("adapter failures must be reported through the promise, got %v", err)
	}
	_, err = await(t, p)

	var re *ResponseError
	if !stderrors.As(err, &re) {
		t.Fatalf("expected *ResponseError, got %v", err)
	}
	if re.Status != 400 || re.StatusText != "Bad Adapter" || !re.IsFail {
		t.Errorf("expected 400 Bad Adapter, got %d %q", re.Status, re.StatusText)
	}
	if re.Code != errors.ErrCodeBadAdapter || !stderrors.Is(err, ErrBadAdapter) {
		t.Errorf("expected BAD_ADAPTER code, got %s", re.Code)
	}
	if re.Cause == nil || !strings.Contains(re.Cause.Error(), "boom") {
		t.Errorf("expected panic value as cause, got %v", re.Cause)
	}
}

func TestDispatch_AdapterError(t *testing.T) {
	cause := stderrors.New("no transport")
	adapter := func(*AdapterRequest) (Task, error) { return nil, cause }

	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: adapter, URL: "/x", Method: MethodGet})
	_, err := await(t, p)
	if !stderrors.Is(err, ErrBadAdapter) {
		t.Fatalf("expected Bad Adapter, got %v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected the adapter error to be unwrappable")
	}
}

func TestDispatch_SecondCallbackIsNoop(t *testing.T) {
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Data: "first"})
		req.Fail(&AdapterResponseError{Status: 500})
		req.Success(&AdapterResponse{Data: "second"})
	}}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	resp, err := await(t, p)
	if err != nil {
		t.Fatalf("expected first callback to win, got %v", err)
	}
	if resp.Data != "first" {
		t.Errorf("expected 'first', got %v", resp.Data)
	}
}

func TestDispatch_SecondCallbackAfterFailIsNoop(t *testing.T) {
	rec := &recorder{respond: func(req *AdapterRequest) {
		req.Fail(&AdapterResponseError{Status: 503})
		req.Success(&AdapterResponse{Data: "late"})
	}}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	_, err := await(t, p)
	var re *ResponseError
	if !stderrors.As(err, &re) || re.Status != 503 {
		t.Errorf("expected first failure to win, got %v", err)
	}
}

func TestDispatch_ConcurrentCallbacks(t *testing.T) {
	rec := &recorder{}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})
	req := rec.last(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				req.Success(&AdapterResponse{Data: i})
			} else {
				req.Fail(&AdapterResponseError{Data: i})
			}
		}(i)
	}
	wg.Wait()

	if _, _, ok := p.Result(); !ok {
		t.Fatal("expected promise to be settled")
	}
}

func TestDispatch_NonDataMethodsDropBody(t *testing.T) {
	for _, m := range []Method{MethodGet, MethodHead, MethodDelete, MethodOptions, MethodTrace, MethodConnect} {
		t.Run(string(m), func(t *testing.T) {
			transformed := false
			rec := &recorder{respond: succeedWith(nil)}
			p, err := newTestDispatcher().Dispatch(&Config{
				Adapter: rec.adapter,
				URL:     "/x",
				Method:  m,
				Data:    map[string]any{"secret": true},
				TransformRequest: []Transformer{func(d any, _ Header) (any, error) {
					transformed = true
					return d, nil
				}},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			await(t, p)
			if rec.last(t).Data != nil {
				t.Errorf("expected no body for %s, got %v", m, rec.last(t).Data)
			}
			if transformed {
				t.Errorf("request transformers must not run for %s", m)
			}
		})
	}
}

func TestDispatch_RequestTransformerSetsHeaders(t *testing.T) {
	rec := &recorder{respond: succeedWith(nil)}
	p, err := newTestDispatcher().Dispatch(&Config{
		Adapter: rec.adapter,
		URL:     "/x",
		Method:  MethodPost,
		Data:    map[string]any{"a": 1},
		TransformRequest: []Transformer{
			func(d any, h Header) (any, error) {
				h.Set("content-type", "application/json")
				return json.Marshal(d)
			},
			func(d any, _ Header) (any, error) {
				return string(d.([]byte)), nil
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	await(t, p)

	req := rec.last(t)
	if req.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("expected transformer header to reach the adapter, got %v", req.Headers)
	}
	if req.Data != `{"a":1}` {
		t.Errorf("expected transformers applied in order, got %v", req.Data)
	}
}

func TestDispatch_RequestTransformerError(t *testing.T) {
	rec := &recorder{respond: succeedWith(nil)}
	cause := stderrors.New("unencodable")
	p, err := newTestDispatcher().Dispatch(&Config{
		Adapter: rec.adapter,
		URL:     "/x",
		Method:  MethodPost,
		Data:    1,
		TransformRequest: []Transformer{
			func(d any, _ Header) (any, error) { return d, nil },
			func(any, Header) (any, error) { return nil, cause },
		},
	})
	if p != nil {
		t.Error("expected no promise")
	}
	if !stderrors.Is(err, ErrTransformFailed) || !stderrors.Is(err, cause) {
		t.Fatalf("expected TRANSFORM_FAILED wrapping the cause, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["stage"] != "request" || appErr.Details["index"] != 1 {
		t.Errorf("expected request stage and index 1, got %v", appErr.Details)
	}
	if rec.count() != 0 {
		t.Error("adapter must not be invoked when a request transformer fails")
	}
}

func TestDispatch_ResponseTransformers(t *testing.T) {
	t.Run("success body", func(t *testing.T) {
		rec := &recorder{respond: func(req *AdapterRequest) {
			req.Success(&AdapterResponse{Data: []byte(`{"id":42}`), Headers: Header{"Content-Type": "application/json"}})
		}}
		p, _ := newTestDispatcher().Dispatch(&Config{
			Adapter: rec.adapter, URL: "/x", Method: MethodGet,
			TransformResponse: []Transformer{func(d any, h Header) (any, error) {
				if h.Get("content-type") != "application/json" {
					return d, nil
				}
				var out map[string]any
				err := json.Unmarshal(d.([]byte), &out)
				return out, err
			}},
		})
		resp, err := await(t, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Data.(map[string]any)["id"] != float64(42) {
			t.Errorf("expected decoded body, got %v", resp.Data)
		}
	})

	t.Run("error body", func(t *testing.T) {
		rec := &recorder{respond: func(req *AdapterRequest) {
			req.Fail(&AdapterResponseError{Status: 502, Data: "raw"})
		}}
		p, _ := newTestDispatcher().Dispatch(&Config{
			Adapter: rec.adapter, URL: "/x", Method: MethodGet,
			TransformResponse: []Transformer{func(d any, _ Header) (any, error) {
				return strings.ToUpper(d.(string)), nil
			}},
		})
		_, err := await(t, p)
		var re *ResponseError
		if !stderrors.As(err, &re) || re.Data != "RAW" {
			t.Errorf("expected transformed error body, got %v", err)
		}
	})

	t.Run("failing transformer rejects", func(t *testing.T) {
		rec := &recorder{respond: succeedWith("x")}
		p, _ := newTestDispatcher().Dispatch(&Config{
			Adapter: rec.adapter, URL: "/x", Method: MethodGet,
			TransformResponse: []Transformer{func(any, Header) (any, error) {
				return nil, stderrors.New("bad json")
			}},
		})
		_, err := await(t, p)
		if !stderrors.Is(err, ErrTransformFailed) {
			t.Errorf("expected TRANSFORM_FAILED, got %v", err)
		}
	})

	t.Run("failing transformer on error body", func(t *testing.T) {
		rec := &recorder{respond: func(req *AdapterRequest) {
			req.Fail(&AdapterResponseError{Status: 500, Data: "<html>"})
		}}
		p, _ := newTestDispatcher().Dispatch(&Config{
			Adapter: rec.adapter, URL: "/x", Method: MethodGet,
			TransformResponse: []Transformer{func(any, Header) (any, error) {
				return nil, stderrors.New("bad json")
			}},
		})
		_, err := await(t, p)
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeTransformFailed {
			t.Fatalf("expected TRANSFORM_FAILED, got %v", err)
		}
		if re, ok := appErr.Details["response_error"].(*ResponseError); !ok || re.Status != 500 {
			t.Errorf("expected the original failure in details, got %v", appErr.Details)
		}
	})
}

func TestDispatch_TaskAttached(t *testing.T) {
	task := &mockTask{}
	rec := &recorder{task: task}
	p, _ := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet})

	rec.last(t).Success(&AdapterResponse{})
	resp, err := await(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Task != task {
		t.Errorf("expected adapter task on the response, got %v", resp.Task)
	}
}

func TestDispatch_RequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf, "test")
	d := NewDispatcher(WithLogger(log), WithName("inventory"))

	rec := &recorder{respond: func(req *AdapterRequest) { req.Fail(&AdapterResponseError{Status: 503}) }}
	cfg := &Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet}
	p, _ := d.Dispatch(cfg)
	await(t, p)

	if cfg.RequestID == "" {
		t.Fatal("expected a generated request id")
	}
	var failed map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if m["message"] == "dispatch failed" {
			failed = m
		}
	}
	if failed == nil {
		t.Fatalf("expected a 'dispatch failed' line, got %s", buf.String())
	}
	if failed[logger.FieldRequestID] != cfg.RequestID {
		t.Errorf("expected request id %q, got %v", cfg.RequestID, failed[logger.FieldRequestID])
	}
	if failed[logger.FieldCode] != string(errors.ErrCodeRequestFailed) || failed[logger.FieldStatus] != float64(503) {
		t.Errorf("expected code and status fields, got %v", failed)
	}
	if failed["client"] != "inventory" {
		t.Errorf("expected client name, got %v", failed["client"])
	}
}

func TestDispatch_KeepsCallerRequestID(t *testing.T) {
	rec := &recorder{respond: succeedWith(nil)}
	cfg := &Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet, RequestID: "fixed"}
	if _, err := newTestDispatcher().Dispatch(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.RequestID != "fixed" {
		t.Errorf("expected caller id kept, got %q", cfg.RequestID)
	}
}

func TestDispatch_PreCanceledToken(t *testing.T) {
	src := cancel.NewSource()
	src.Cancel("stop")
	rec := &recorder{respond: succeedWith(nil)}

	p, err := newTestDispatcher().Dispatch(&Config{Adapter: rec.adapter, URL: "/x", Method: MethodGet, CancelToken: src.Token()})
	if p != nil {
		t.Error("expected no promise")
	}
	var c *cancel.Cancel
	if !stderrors.As(err, &c) || c.Message != "stop" {
		t.Fatalf("expected the cancel reason, got %v", err)
	}
	if rec.count() != 0 {
		t.Error("adapter must not be invoked for a canceled request")
	}
}
