package cancel

import (
	"context"
	"sync"
)

// FromContext returns a Token that fires when ctx is done.
// The cancel reason carries the context's cause.
func FromContext(ctx context.Context) Token {
	return &contextToken{ctx: ctx}
}

type contextToken struct {
	ctx context.Context
}

func (t *contextToken) reason() *Cancel {
	cause := context.Cause(t.ctx)
	if cause == nil {
		return nil
	}
	return &Cancel{Message: cause.Error()}
}

func (t *contextToken) Requested() bool {
	return t.ctx.Err() != nil
}

func (t *contextToken) ThrowIfRequested() error {
	if r := t.reason(); r != nil {
		return r
	}
	return nil
}

func (t *contextToken) OnCancel(listener func(*Cancel)) func() bool {
	return context.AfterFunc(t.ctx, func() {
		listener(t.reason())
	})
}

// Join returns a Token that fires on the first of tokens to fire.
// Nil tokens are ignored; Join returns nil when none remain.
func Join(tokens ...Token) Token {
	live := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok != nil {
			live = append(live, tok)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return joined(live)
}

type joined []Token

func (j joined) Requested() bool {
	for _, tok := range j {
		if tok.Requested() {
			return true
		}
	}
	return false
}

func (j joined) ThrowIfRequested() error {
	for _, tok := range j {
		if err := tok.ThrowIfRequested(); err != nil {
			return err
		}
	}
	return nil
}

func (j joined) OnCancel(listener func(*Cancel)) func() bool {
	var once sync.Once
	fire := func(c *Cancel) {
		once.Do(func() { listener(c) })
	}

	stops := make([]func() bool, 0, len(j))
	for _, tok := range j {
		stops = append(stops, tok.OnCancel(fire))
	}

	return func() bool {
		stopped := true
		for _, stop := range stops {
			if !stop() {
				stopped = false
			}
		}
		return stopped
	}
}
