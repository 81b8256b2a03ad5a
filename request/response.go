package request

import (
	"fmt"

	"github.com/kbukum/reqkit/errors"
)

// Response messages and status texts.
const (
	MsgValidateStatusFail = "validate status fail"
	MsgRequestFail        = "request fail"

	StatusTextOK          = "OK"
	StatusTextFailAdapter = "Fail Adapter"
	StatusTextBadAdapter  = "Bad Adapter"
)

// Sentinels for errors.Is. A *ResponseError matches the sentinel of its Code.
var (
	ErrInvalidConfig   = errors.Sentinel(errors.ErrCodeInvalidConfig)
	ErrTransformFailed = errors.Sentinel(errors.ErrCodeTransformFailed)
	ErrBadAdapter      = errors.Sentinel(errors.ErrCodeBadAdapter)
	ErrRequestFailed   = errors.Sentinel(errors.ErrCodeRequestFailed)
	ErrValidateStatus  = errors.Sentinel(errors.ErrCodeValidateStatus)
)

// Response is the normalized result of a fulfilled dispatch.
type Response struct {
	Status     int
	StatusText string
	Headers    Header
	// Data is the adapter body after TransformResponse.
	Data any
	// Config is the normalized configuration that produced the response.
	Config *Config
	// Task is the adapter task. It is nil when the adapter completed
	// before returning its task.
	Task Task
}

// ResponseError is the normalized result of a rejected dispatch, other than
// cancellation.
type ResponseError struct {
	Response
	// IsFail is true when the adapter reported a transport failure and
	// false when a response failed status validation.
	IsFail  bool
	Message string
	Code    errors.ErrorCode
	// Cause is the adapter error behind a Bad Adapter failure.
	Cause error
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Message, e.Status, e.StatusText)
}

// Is matches *errors.AppError sentinels carrying the same code.
func (e *ResponseError) Is(target error) bool {
	t, ok := target.(*errors.AppError)
	return ok && t.Code == e.Code
}

// Unwrap returns the underlying cause, if any.
func (e *ResponseError) Unwrap() error { return e.Cause }

// Retryable reports whether the failure is worth retrying by the caller.
func (e *ResponseError) Retryable() bool {
	return errors.IsRetryableCode(e.Code)
}

func newResponse(raw *AdapterResponse, cfg *Config, task Task) *Response {
	if raw == nil {
		raw = &AdapterResponse{}
	}
	resp := &Response{
		Status:     raw.Status,
		StatusText: raw.StatusText,
		Headers:    raw.Headers,
		Data:       raw.Data,
		Config:     cfg,
		Task:       task,
	}
	if resp.Status == 0 {
		resp.Status = 200
	}
	if resp.StatusText == "" {
		resp.StatusText = StatusTextOK
	}
	if resp.Headers == nil {
		resp.Headers = Header{}
	}
	return resp
}

func newFailure(raw *AdapterResponseError, cfg *Config, task Task, code errors.ErrorCode) *ResponseError {
	if raw == nil {
		raw = &AdapterResponseError{}
	}
	e := &ResponseError{
		Response: Response{
			Status:     raw.Status,
			StatusText: raw.StatusText,
			Headers:    raw.Headers,
			Data:       raw.Data,
			Config:     cfg,
			Task:       task,
		},
		IsFail:  true,
		Message: MsgRequestFail,
		Code:    code,
	}
	if e.Status == 0 {
		e.Status = 400
	}
	if e.StatusText == "" {
		e.StatusText = StatusTextFailAdapter
	}
	if e.Headers == nil {
		e.Headers = Header{}
	}
	return e
}

func newStatusError(resp *Response) *ResponseError {
	return &ResponseError{
		Response: *resp,
		Message:  MsgValidateStatusFail,
		Code:     errors.ErrCodeValidateStatus,
	}
}
