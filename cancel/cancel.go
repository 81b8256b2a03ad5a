package cancel

import (
	"errors"
	"sync"
)

// Cancel is the terminal value of a request aborted by its caller.
// It is deliberately distinct from transport failures: a Cancel is never
// transformed or re-wrapped by the dispatcher.
type Cancel struct {
	// Message is the caller supplied reason.
	Message string
}

// Error implements the error interface.
func (c *Cancel) Error() string {
	if c.Message == "" {
		return "canceled"
	}
	return "canceled: " + c.Message
}

// IsCancel reports whether err is, or wraps, a *Cancel.
func IsCancel(err error) bool {
	var c *Cancel
	return errors.As(err, &c)
}

// Token is a cooperative cancellation handle shared between a caller and
// the dispatcher.
type Token interface {
	// Requested reports whether cancellation has already been requested.
	Requested() bool
	// OnCancel registers a one-shot listener receiving the cancel reason.
	// If cancellation was already requested the listener runs immediately.
	// The returned stop function unregisters the listener and reports
	// whether it did so before the listener ran.
	OnCancel(listener func(*Cancel)) (stop func() bool)
	// ThrowIfRequested returns the cancel reason if cancellation was requested.
	ThrowIfRequested() error
}

// Source owns a Token and the function that fires it.
// A Source may back any number of requests; it fires at most once.
type Source struct {
	mu        sync.Mutex
	reason    *Cancel
	nextID    uint64
	listeners map[uint64]func(*Cancel)
}

// NewSource creates an unfired cancellation source.
func NewSource() *Source {
	return &Source{listeners: make(map[uint64]func(*Cancel))}
}

// Token returns the cancellation handle backed by s.
func (s *Source) Token() Token {
	return s
}

// Cancel requests cancellation with the given reason. Only the first call
// has an effect; it reports whether this call fired the source.
func (s *Source) Cancel(message string) bool {
	s.mu.Lock()
	if s.reason != nil {
		s.mu.Unlock()
		return false
	}
	reason := &Cancel{Message: message}
	s.reason = reason
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, l := range listeners {
		l(reason)
	}
	return true
}

// Requested implements Token.
func (s *Source) Requested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason != nil
}

// ThrowIfRequested implements Token.
func (s *Source) ThrowIfRequested() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason != nil {
		return s.reason
	}
	return nil
}

// OnCancel implements Token.
func (s *Source) OnCancel(listener func(*Cancel)) func() bool {
	s.mu.Lock()
	if s.reason != nil {
		reason := s.reason
		s.mu.Unlock()
		listener(reason)
		return func() bool { return false }
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.listeners[id]; !ok {
			return false
		}
		delete(s.listeners, id)
		return true
	}
}
