package request

import (
	"github.com/kbukum/reqkit/errors"
	"github.com/kbukum/reqkit/validation"
)

// normalize validates cfg and rewrites it in place for the adapter: URL
// resolved, method uppercased, headers flattened, header hooks run, and Data
// transformed for POST/PUT or dropped otherwise.
//
// An absent adapter, url or method is a MISSING_FIELD error; an unknown
// method is INVALID_CONFIG.
func normalize(cfg *Config) error {
	if cfg.Adapter == nil {
		return errors.MissingField("adapter")
	}
	if err := validation.Required("url", cfg.URL); err != nil {
		return err
	}
	if err := validation.Required("method", string(cfg.Method)); err != nil {
		return err
	}
	v := validation.New().OneOf("method", string(cfg.Method.Upper()), methodNames())
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	cfg.URL = ResolveURL(cfg)
	cfg.Method = cfg.Method.Upper()
	cfg.Headers = FlattenHeaders(cfg)
	if err := runHeaderHooks(cfg.Headers, cfg.HeaderHooks); err != nil {
		return err
	}

	if !cfg.Method.CarriesData() {
		cfg.Data = nil
		return nil
	}
	data, err := transformData(stageRequest, cfg.Data, cfg.Headers, cfg.TransformRequest)
	if err != nil {
		return err
	}
	cfg.Data = data
	return nil
}

// checkCanceled returns the cancel reason when cfg's token has fired.
func checkCanceled(cfg *Config) error {
	if cfg.CancelToken == nil {
		return nil
	}
	return cfg.CancelToken.ThrowIfRequested()
}
