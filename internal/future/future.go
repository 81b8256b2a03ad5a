// Package future provides a generic single-assignment future.
//
// A Future is settled at most once, either resolved with a value or rejected
// with an error. Later Resolve/Reject calls are silent no-ops that report
// false. Continuations registered with Then run synchronously on the
// goroutine that settles the future, or immediately if it is already settled.
package future

import (
	"context"
	"sync"
)

// Future is a settle-once container for a value or an error.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// New creates an unsettled Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve settles the future with v. It reports whether this call settled it.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. It reports whether this call settled it.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Done returns a channel closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled value and error. ok is false while unsettled.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		return v, nil, false
	}
	return f.value, f.err, true
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, err, _ := f.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnSettle registers cb to run once the future settles.
func (f *Future[T]) OnSettle(cb func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	cb(v, err)
}

// Then derives a new future from src. onValue handles a resolved src, onError
// a rejected one; whichever runs settles the returned future with its result.
func Then[T, U any](src *Future[T], onValue func(T) (U, error), onError func(error) (U, error)) *Future[U] {
	next := New[U]()
	src.OnSettle(func(v T, err error) {
		var (
			out    U
			outErr error
		)
		if err != nil {
			out, outErr = onError(err)
		} else {
			out, outErr = onValue(v)
		}
		if outErr != nil {
			next.Reject(outErr)
			return
		}
		next.Resolve(out)
	})
	return next
}
