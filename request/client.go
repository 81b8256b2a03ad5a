package request

import (
	"context"

	"github.com/kbukum/reqkit/cancel"
	"github.com/kbukum/reqkit/util"
)

// aliasKind selects how an alias folds its positional argument into the
// call configuration.
type aliasKind int

const (
	aliasPlain aliasKind = iota // url only
	aliasQuery                  // positional params merged under Params
	aliasBody                   // positional data merged under Data
)

// Client sends requests layered over a fixed set of defaults. The defaults
// are never modified after New; every call merges into a fresh Config, so
// a Client is safe for concurrent use.
type Client struct {
	defaults   *Config
	dispatcher *Dispatcher
}

// New creates a Client. defaults may be nil.
func New(defaults *Config, opts ...Option) *Client {
	return &Client{
		defaults:   defaults.Clone(),
		dispatcher: NewDispatcher(opts...),
	}
}

// Defaults returns a copy of the client defaults.
func (c *Client) Defaults() *Config {
	return c.defaults.Clone()
}

// Dispatch merges cfg over the defaults and starts the request without
// waiting for it. cfg is not modified.
func (c *Client) Dispatch(cfg *Config) (*Promise, error) {
	return c.dispatcher.Dispatch(MergeConfig(c.defaults, cfg))
}

// Request merges cfg over the defaults, sends it and waits for the outcome.
// Cancelling ctx cancels the request as if its token had fired. cfg is not
// modified.
func (c *Client) Request(ctx context.Context, cfg *Config) (*Response, error) {
	merged := MergeConfig(c.defaults, cfg)
	merged.CancelToken = cancel.Join(merged.CancelToken, cancel.FromContext(ctx))

	p, err := c.dispatcher.DispatchContext(ctx, merged)
	if err != nil {
		return nil, err
	}
	// ctx is joined into the token, so the promise settles when ctx ends.
	return p.Await(context.WithoutCancel(ctx))
}

// Options sends an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodOptions, aliasPlain, url, nil, cfg)
}

// Trace sends a TRACE request.
func (c *Client) Trace(ctx context.Context, url string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodTrace, aliasPlain, url, nil, cfg)
}

// Connect sends a CONNECT request.
func (c *Client) Connect(ctx context.Context, url string, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodConnect, aliasPlain, url, nil, cfg)
}

// Head sends a HEAD request. params are merged under cfg.Params; cfg wins
// on conflicting keys.
func (c *Client) Head(ctx context.Context, url string, params map[string]any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodHead, aliasQuery, url, params, cfg)
}

// Get sends a GET request. params are merged under cfg.Params; cfg wins on
// conflicting keys.
func (c *Client) Get(ctx context.Context, url string, params map[string]any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodGet, aliasQuery, url, params, cfg)
}

// Delete sends a DELETE request. params are merged under cfg.Params; cfg
// wins on conflicting keys.
func (c *Client) Delete(ctx context.Context, url string, params map[string]any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodDelete, aliasQuery, url, params, cfg)
}

// Post sends a POST request. When data and cfg.Data are both maps they are
// merged with cfg winning; otherwise cfg.Data is used if set, else data.
func (c *Client) Post(ctx context.Context, url string, data any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodPost, aliasBody, url, data, cfg)
}

// Put sends a PUT request. Data merges as for Post.
func (c *Client) Put(ctx context.Context, url string, data any, cfg *Config) (*Response, error) {
	return c.send(ctx, MethodPut, aliasBody, url, data, cfg)
}

func (c *Client) send(ctx context.Context, method Method, kind aliasKind, url string, arg any, cfg *Config) (*Response, error) {
	call := &Config{}
	if cfg != nil {
		shallow := *cfg
		call = &shallow
	}
	call.URL = url
	call.Method = method

	switch kind {
	case aliasQuery:
		params, _ := arg.(map[string]any)
		if params != nil || call.Params != nil {
			call.Params = util.DeepMerge(params, call.Params)
		}
	case aliasBody:
		call.Data = mergeBody(arg, call.Data)
	}

	return c.Request(ctx, call)
}

func mergeBody(positional, explicit any) any {
	pm, pok := positional.(map[string]any)
	em, eok := explicit.(map[string]any)
	switch {
	case pok && eok:
		return util.DeepMerge(pm, em)
	case explicit != nil:
		return explicit
	default:
		return positional
	}
}
