package request

import (
	"github.com/kbukum/reqkit/util"
)

// MergeConfig layers cfg over defaults and returns a fresh Config; neither
// input is modified.
//
//   - URL, Data and RequestID come from cfg only.
//   - Headers, CommonHeaders, MethodHeaders, Params and Extras are merged
//     key by key, cfg winning. Params merge recursively.
//   - Every other field takes cfg's value when set, else the default.
func MergeConfig(defaults, cfg *Config) *Config {
	if defaults == nil {
		defaults = &Config{}
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := &Config{
		URL:       cfg.URL,
		Data:      cfg.Data,
		RequestID: cfg.RequestID,
		Upload:    cfg.Upload,
		Download:  cfg.Download,

		Headers:       mergeHeaders(defaults.Headers, cfg.Headers),
		CommonHeaders: mergeHeaders(defaults.CommonHeaders, cfg.CommonHeaders),
		MethodHeaders: mergeMethodHeaders(defaults.MethodHeaders, cfg.MethodHeaders),
		Extras:        Extras(util.Merge(defaults.Extras, cfg.Extras)),

		BaseURL: util.Coalesce(cfg.BaseURL, defaults.BaseURL),
		Method:  util.Coalesce(cfg.Method, defaults.Method),
		Timeout: util.Coalesce(cfg.Timeout, defaults.Timeout),

		Adapter:            defaults.Adapter,
		CancelToken:        defaults.CancelToken,
		ValidateStatus:     defaults.ValidateStatus,
		ParamsSerializer:   defaults.ParamsSerializer,
		OnUploadProgress:   defaults.OnUploadProgress,
		OnDownloadProgress: defaults.OnDownloadProgress,
		TransformRequest:   cloneTransformers(defaults.TransformRequest),
		TransformResponse:  cloneTransformers(defaults.TransformResponse),
		HeaderHooks:        cloneHeaderHooks(defaults.HeaderHooks),
	}

	if cfg.Adapter != nil {
		out.Adapter = cfg.Adapter
	}
	if cfg.CancelToken != nil {
		out.CancelToken = cfg.CancelToken
	}
	if cfg.ValidateStatus != nil {
		out.ValidateStatus = cfg.ValidateStatus
	}
	if cfg.ParamsSerializer != nil {
		out.ParamsSerializer = cfg.ParamsSerializer
	}
	if cfg.OnUploadProgress != nil {
		out.OnUploadProgress = cfg.OnUploadProgress
	}
	if cfg.OnDownloadProgress != nil {
		out.OnDownloadProgress = cfg.OnDownloadProgress
	}
	if cfg.TransformRequest != nil {
		out.TransformRequest = cloneTransformers(cfg.TransformRequest)
	}
	if cfg.TransformResponse != nil {
		out.TransformResponse = cloneTransformers(cfg.TransformResponse)
	}
	if cfg.HeaderHooks != nil {
		out.HeaderHooks = cloneHeaderHooks(cfg.HeaderHooks)
	}
	if defaults.Params != nil || cfg.Params != nil {
		out.Params = util.DeepMerge(defaults.Params, cfg.Params)
	}
	return out
}

func mergeHeaders(base, over Header) Header {
	if base == nil && over == nil {
		return nil
	}
	out := Header{}
	out.merge(base)
	out.merge(over)
	return out
}

func mergeMethodHeaders(base, over map[Method]Header) map[Method]Header {
	if base == nil && over == nil {
		return nil
	}
	out := make(map[Method]Header, len(base)+len(over))
	for m, h := range base {
		out[m.Upper()] = mergeHeaders(out[m.Upper()], h)
	}
	for m, h := range over {
		out[m.Upper()] = mergeHeaders(out[m.Upper()], h)
	}
	return out
}
