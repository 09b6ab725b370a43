// Package memory provides an in-memory transport that records every
// request it is handed. It backs tests and dry runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/zeevl/raven-js/pkg/raven"
)

// Transport records requests instead of sending them. Completion is
// reported synchronously.
type Transport struct {
	mu       sync.Mutex
	requests []raven.Request
	sendErr  error
	closed   bool
}

// New creates an empty recording transport.
func New() *Transport {
	return &Transport{}
}

// FailWith makes every subsequent Send report err through its completion
// callback. The request is still recorded.
func (t *Transport) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// Send records the request and completes immediately.
func (t *Transport) Send(ctx context.Context, req raven.Request, done func(error)) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		if done != nil {
			done(errors.New("memory transport is closed"))
		}
		return
	}
	t.requests = append(t.requests, req)
	err := t.sendErr
	t.mu.Unlock()

	if done != nil {
		done(err)
	}
}

// Requests returns a copy of everything sent so far.
func (t *Transport) Requests() []raven.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]raven.Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// Close stops the transport; subsequent sends fail.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

var _ raven.Transport = (*Transport)(nil)
