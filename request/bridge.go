package request

import (
	"fmt"
	"sync"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/errors"
	"github.com/kbukum/reqkit/internal/future"
)

// invoke runs the adapter for a normalized cfg and returns a future settled
// exactly once by the first of: Success, Fail, or the cancel token.
func invoke(cfg *Config) *future.Future[*Response] {
	fut := future.New[*Response]()

	var (
		mu   sync.Mutex
		task Task
	)
	currentTask := func() Task {
		mu.Lock()
		defer mu.Unlock()
		return task
	}

	fail := func(raw *AdapterResponseError, code errors.ErrorCode, cause error) {
		if fut.Settled() {
			return
		}
		failure := newFailure(raw, cfg, currentTask(), code)
		failure.Cause = cause
		fut.Reject(failure)
	}

	req := &AdapterRequest{
		Method:             cfg.Method,
		URL:                cfg.URL,
		Headers:            cfg.Headers,
		Data:               cfg.Data,
		Type:               classify(cfg),
		Timeout:            cfg.Timeout,
		Extras:             cfg.Extras,
		OnUploadProgress:   cfg.OnUploadProgress,
		OnDownloadProgress: cfg.OnDownloadProgress,
	}
	req.Success = func(raw *AdapterResponse) {
		if fut.Settled() {
			return
		}
		resp := newResponse(raw, cfg, currentTask())
		if cfg.ValidateStatus != nil && !cfg.ValidateStatus(resp.Status) {
			fut.Reject(newStatusError(resp))
			return
		}
		fut.Resolve(resp)
	}
	req.Fail = func(raw *AdapterResponseError) {
		fail(raw, errors.ErrCodeRequestFailed, nil)
	}

	t, err := callAdapter(cfg.Adapter, req)
	mu.Lock()
	task = t
	mu.Unlock()
	if err != nil {
		fail(&AdapterResponseError{Status: 400, StatusText: StatusTextBadAdapter}, errors.ErrCodeBadAdapter, err)
	}

	progress := progressCallback(req)
	observer, observable := t.(ProgressObserver)
	if observable && progress != nil {
		observer.OnProgressUpdate(progress)
	}

	if cfg.CancelToken != nil {
		stop := cfg.CancelToken.OnCancel(func(reason *cancel.Cancel) {
			if fut.Settled() {
				return
			}
			if observable && progress != nil {
				observer.OffProgressUpdate(progress)
			}
			if aborter, ok := t.(Aborter); ok {
				aborter.Abort()
			}
			if reason == nil {
				reason = &cancel.Cancel{}
			}
			fut.Reject(reason)
		})
		fut.OnSettle(func(*Response, error) { stop() })
	}

	return fut
}

// callAdapter invokes adapter, converting a panic into an error.
func callAdapter(adapter Adapter, req *AdapterRequest) (task Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return adapter(req)
}

// progressCallback selects the caller callback matching the request type.
func progressCallback(req *AdapterRequest) ProgressCallback {
	switch req.Type {
	case TypeUpload:
		return req.OnUploadProgress
	case TypeDownload:
		return req.OnDownloadProgress
	default:
		return nil
	}
}
