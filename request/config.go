package request

import (
	"time"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/config"
	"github.com/kbukum/reqkit/util"
	"github.com/kbukum/reqkit/version"
)

// Transformer maps body data to new data. It may modify headers as a side
// effect, e.g. to set a content type.
type Transformer func(data any, headers Header) (any, error)

// HeaderHook edits the flattened request headers of every dispatch,
// whatever the method. It runs after header flattening and before the
// request transformers.
type HeaderHook func(headers Header) error

// ProgressEvent reports transfer progress of an upload or download.
type ProgressEvent struct {
	// Progress is the completed percentage, 0 to 100.
	Progress int
	// Transferred is the number of bytes sent or received so far.
	Transferred int64
	// Total is the expected number of bytes, or 0 if unknown.
	Total int64
}

// ProgressCallback receives progress events from an adapter.
type ProgressCallback func(ProgressEvent)

// UploadFile is request data describing a file upload.
// Posting an *UploadFile classifies the request as an upload.
type UploadFile struct {
	// Name is the form field name of the file.
	Name string
	// FilePath is the adapter-resolvable location of the file.
	FilePath string
	// FormData holds additional form fields sent with the file.
	FormData map[string]any
}

// Config is the unit of work for one dispatch.
type Config struct {
	// Adapter performs the transport. Required.
	Adapter Adapter
	// BaseURL is joined to URL unless URL is absolute.
	BaseURL string
	// URL is the request target. It may contain :name or {name} path
	// parameters resolved from Params, then Data. Required.
	URL string
	// Method is the HTTP method, matched case-insensitively. Required.
	Method Method
	// Headers are request headers. They win over MethodHeaders and CommonHeaders.
	Headers Header
	// CommonHeaders apply to every method.
	CommonHeaders Header
	// MethodHeaders apply to the keyed method only.
	MethodHeaders map[Method]Header
	// Params are query parameters. Keys consumed by the URL template are
	// not repeated in the query string.
	Params map[string]any
	// Data is the request body. It is dropped for methods other than POST and PUT.
	Data any
	// CancelToken cancels the dispatch when fired.
	CancelToken cancel.Token
	// ValidateStatus accepts or rejects a response status. Nil accepts all.
	ValidateStatus func(status int) bool
	// TransformRequest runs over Data before the adapter is invoked.
	TransformRequest []Transformer
	// TransformResponse runs over response and error data.
	TransformResponse []Transformer
	// HeaderHooks run over the flattened headers of every request.
	HeaderHooks []HeaderHook
	// ParamsSerializer replaces the default query string encoding.
	ParamsSerializer func(params map[string]any) string
	// Upload marks a POST as an upload.
	Upload bool
	// Download marks a GET as a download.
	Download bool
	// OnUploadProgress is wired to upload tasks that report progress.
	OnUploadProgress ProgressCallback
	// OnDownloadProgress is wired to download tasks that report progress.
	OnDownloadProgress ProgressCallback
	// Timeout is passed to the adapter. The core never enforces it.
	Timeout time.Duration
	// Extras carries adapter-defined options.
	Extras Extras
	// RequestID correlates logs and spans. Generated when empty.
	RequestID string
}

// Clone returns a copy of c whose maps and slices can be modified without
// affecting c. Data is copied by reference.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	out := *c
	out.Headers = c.Headers.Clone()
	out.CommonHeaders = c.CommonHeaders.Clone()
	out.MethodHeaders = cloneMethodHeaders(c.MethodHeaders)
	if c.Params != nil {
		out.Params = util.DeepMerge(c.Params)
	}
	out.TransformRequest = cloneTransformers(c.TransformRequest)
	out.TransformResponse = cloneTransformers(c.TransformResponse)
	out.HeaderHooks = cloneHeaderHooks(c.HeaderHooks)
	out.Extras = c.Extras.clone()
	return &out
}

func cloneMethodHeaders(m map[Method]Header) map[Method]Header {
	if m == nil {
		return nil
	}
	out := make(map[Method]Header, len(m))
	for method, h := range m {
		out[method] = h.Clone()
	}
	return out
}

func cloneTransformers(fns []Transformer) []Transformer {
	if fns == nil {
		return nil
	}
	return append([]Transformer(nil), fns...)
}

func cloneHeaderHooks(hooks []HeaderHook) []HeaderHook {
	if hooks == nil {
		return nil
	}
	return append([]HeaderHook(nil), hooks...)
}

// StatusRange returns a status validator accepting lo..hi inclusive.
func StatusRange(lo, hi int) func(int) bool {
	return func(status int) bool {
		return status >= lo && status <= hi
	}
}

// DefaultConfig returns the recommended client defaults: GET, 2xx status
// validation, and common Accept and User-Agent headers. The adapter is left
// for the caller to set.
func DefaultConfig() *Config {
	return &Config{
		Method:         MethodGet,
		ValidateStatus: StatusRange(200, 299),
		CommonHeaders: Header{
			"Accept":     "application/json, text/plain, */*",
			"User-Agent": version.UserAgent(),
		},
	}
}

// FromClientConfig builds client defaults from a loaded ClientConfig,
// layered over DefaultConfig.
func FromClientConfig(cc *config.ClientConfig, adapter Adapter) *Config {
	cfg := DefaultConfig()
	cfg.Adapter = adapter
	if cc == nil {
		return cfg
	}

	cfg.BaseURL = cc.BaseURL
	if cc.Method != "" {
		cfg.Method = Method(cc.Method).Upper()
	}
	cfg.Timeout = cc.Timeout
	if cc.ValidStatus.Max > 0 {
		cfg.ValidateStatus = cc.ValidStatus.Contains
	}
	cfg.CommonHeaders.merge(cc.CommonHeaders)
	if len(cc.Headers) > 0 {
		cfg.Headers = NewHeader(cc.Headers)
	}
	for m, h := range cc.MethodHeaders {
		if cfg.MethodHeaders == nil {
			cfg.MethodHeaders = make(map[Method]Header, len(cc.MethodHeaders))
		}
		cfg.MethodHeaders[Method(m).Upper()] = NewHeader(h)
	}
	if len(cc.Params) > 0 {
		cfg.Params = util.DeepMerge(cc.Params)
	}
	return cfg
}
