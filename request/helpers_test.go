package request

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/reqkit/logger"
)

// mockTask is an abortable, progress-observable adapter task.
type mockTask struct {
	aborts atomic.Int32

	mu       sync.Mutex
	onCalls  int
	offCalls int
	progress ProgressCallback
}

func (t *mockTask) Abort() { t.aborts.Add(1) }

func (t *mockTask) OnProgressUpdate(cb ProgressCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalls++
	t.progress = cb
}

func (t *mockTask) OffProgressUpdate(ProgressCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offCalls++
	t.progress = nil
}

func (t *mockTask) emit(ev ProgressEvent) {
	t.mu.Lock()
	cb := t.progress
	t.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func (t *mockTask) toggles() (on, off int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.onCalls, t.offCalls
}

// recorder is an adapter that records every request. With a nil respond
// function the request stays pending until the test completes it.
type recorder struct {
	mu      sync.Mutex
	calls   []*AdapterRequest
	task    Task
	respond func(req *AdapterRequest)
}

func (r *recorder) adapter(req *AdapterRequest) (Task, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req)
	r.mu.Unlock()
	if r.respond != nil {
		r.respond(req)
	}
	return r.task, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last(t *testing.T) *AdapterRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("adapter was not invoked")
	}
	return r.calls[len(r.calls)-1]
}

// succeedWith returns a respond function completing with data.
func succeedWith(data any) func(*AdapterRequest) {
	return func(req *AdapterRequest) {
		req.Success(&AdapterResponse{Data: data})
	}
}

func newTestClient(defaults *Config) *Client {
	return New(defaults, WithLogger(logger.Nop()))
}

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(WithLogger(logger.Nop()))
}

func await(t *testing.T, p *Promise) (*Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := p.Await(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("promise did not settle")
	}
	return resp, err
}
