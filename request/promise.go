package request

import (
	"context"

	"github.com/kbukum/reqkit/internal/future"
)

// Promise is the pending outcome of one dispatch. It settles exactly once
// with a *Response, or with a *ResponseError, *cancel.Cancel or
// TRANSFORM_FAILED error.
type Promise struct {
	fut    *future.Future[*Response]
	config *Config
}

// Await blocks until the dispatch settles or ctx is done. Returning because
// of ctx does not cancel the request; use a cancel token for that.
func (p *Promise) Await(ctx context.Context) (*Response, error) {
	return p.fut.Await(ctx)
}

// Done returns a channel closed once the dispatch settles.
func (p *Promise) Done() <-chan struct{} {
	return p.fut.Done()
}

// Result returns the outcome. ok is false while the dispatch is pending.
func (p *Promise) Result() (resp *Response, err error, ok bool) {
	return p.fut.Result()
}

// OnSettle registers fn to run once the dispatch settles. If it already
// has, fn runs immediately on the calling goroutine.
func (p *Promise) OnSettle(fn func(*Response, error)) {
	p.fut.OnSettle(fn)
}

// Config returns the normalized configuration being dispatched.
func (p *Promise) Config() *Config {
	return p.config
}
