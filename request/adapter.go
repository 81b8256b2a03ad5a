package request

import (
	"time"
)

// RequestType classifies a request for the adapter.
type RequestType string

// Request types.
const (
	TypeRequest  RequestType = "request"
	TypeUpload   RequestType = "upload"
	TypeDownload RequestType = "download"
)

// Adapter performs one transport operation. It must call exactly one of
// req.Success or req.Fail exactly once, from any goroutine, or neither if
// the request is aborted first. A returned error (or a panic) is reported
// as a 400 "Bad Adapter" failure.
type Adapter func(req *AdapterRequest) (Task, error)

// Task is the adapter's handle on an in-flight operation. Its optional
// capabilities are discovered through the Aborter and ProgressObserver
// interfaces. A nil Task is valid.
type Task any

// Aborter is implemented by tasks whose transport can be stopped.
type Aborter interface {
	Abort()
}

// ProgressObserver is implemented by tasks that report transfer progress.
// OffProgressUpdate detaches the callback attached by OnProgressUpdate.
type ProgressObserver interface {
	OnProgressUpdate(cb ProgressCallback)
	OffProgressUpdate(cb ProgressCallback)
}

// AdapterRequest is the normalized request handed to an adapter.
type AdapterRequest struct {
	Method  Method
	URL     string
	Headers Header
	// Data is nil for methods that carry no body.
	Data               any
	Type               RequestType
	Timeout            time.Duration
	Extras             Extras
	OnUploadProgress   ProgressCallback
	OnDownloadProgress ProgressCallback

	// Success reports a completed transport. Calls after the dispatch
	// settled are ignored.
	Success func(res *AdapterResponse)
	// Fail reports a transport failure. Calls after the dispatch settled
	// are ignored.
	Fail func(res *AdapterResponseError)
}

// AdapterResponse is the raw result an adapter passes to Success.
// Zero Status and empty StatusText are defaulted to 200 and "OK".
type AdapterResponse struct {
	Status     int
	StatusText string
	Headers    Header
	Data       any
}

// AdapterResponseError is the raw failure an adapter passes to Fail.
// Zero Status and empty StatusText are defaulted to 400 and "Fail Adapter".
type AdapterResponseError struct {
	Status     int
	StatusText string
	Headers    Header
	Data       any
}

// classify derives the request type: an upload is a POST flagged Upload or
// carrying an *UploadFile, a download is a GET flagged Download.
func classify(cfg *Config) RequestType {
	_, isFile := cfg.Data.(*UploadFile)
	switch {
	case cfg.Method == MethodPost && (cfg.Upload || isFile):
		return TypeUpload
	case cfg.Method == MethodGet && cfg.Download:
		return TypeDownload
	default:
		return TypeRequest
	}
}
